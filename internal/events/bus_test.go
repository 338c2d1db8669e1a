// AngelaMos | 2026
// bus_test.go

package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewBus(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	courier := int64(8)
	require.NoError(t, bus.Publish(ctx, OrderEvent{
		Type:             OrderClaimed,
		OrderID:          12,
		UserID:           3,
		DeliveryPersonID: &courier,
		Status:           "Processing",
	}))

	select {
	case ev := <-ch:
		assert.Equal(t, OrderClaimed, ev.Type)
		assert.Equal(t, int64(12), ev.OrderID)
		require.NotNil(t, ev.DeliveryPersonID)
		assert.Equal(t, int64(8), *ev.DeliveryPersonID)
		assert.False(t, ev.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	err := NewBus(rdb).Publish(context.Background(), OrderEvent{Type: OrderPlaced})
	assert.Error(t, err)
}
