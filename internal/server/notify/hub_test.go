package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestHub_NotifyReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Notify(context.Background())

	assert.True(t, received(a))
	assert.True(t, received(b))
}

func TestHub_Coalesces(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Notify(context.Background())
	}

	require.True(t, received(ch))
	assert.False(t, received(ch), "pending signals must collapse into one")
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())

	h.Notify(context.Background())
	assert.False(t, received(ch))
}
