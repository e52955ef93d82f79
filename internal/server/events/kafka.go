package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by product id, so all changes of one
// product land on the same partition in order.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev ProductEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Product.ID),
		Value: b,
		Time:  ev.At,
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
