package notify

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier signals the local hub directly and publishes the change on
// a Redis channel so that other instances can signal theirs. Each instance
// tags its messages with its own id and ignores them on the way back.
type RedisNotifier struct {
	client    redisPublisher
	subscribe func(ctx context.Context, channel string) *redis.PubSub
	channel   string
	hub       *Hub
	instance  string
	log       logging.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, hub *Hub, log logging.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		subscribe: func(ctx context.Context, channel string) *redis.PubSub {
			return client.Subscribe(ctx, channel)
		},
		channel:  channel,
		hub:      hub,
		instance: uuid.NewString(),
		log:      log.With("module", "notify"),
	}
}

func (n *RedisNotifier) Notify(ctx context.Context) {
	n.hub.Notify(ctx)

	if err := n.client.Publish(ctx, n.channel, n.instance).Err(); err != nil {
		n.log.Warn(ctx, "redis publish failed", "channel", n.channel, "error", err)
	}
}

// Listen forwards changes published by other instances into the hub until
// ctx is done.
func (n *RedisNotifier) Listen(ctx context.Context) error {
	ps := n.subscribe(ctx, n.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	n.log.Info(ctx, "listening for remote changes", "channel", n.channel)

	n.forward(ctx, ps.Channel())
	return ctx.Err()
}

func (n *RedisNotifier) forward(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if m.Payload == n.instance {
				continue
			}
			n.hub.Notify(ctx)
		}
	}
}
