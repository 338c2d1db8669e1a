// AngelaMos | 2026
// bus.go

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const OrderChannel = "avocado:orders"

const (
	OrderPlaced    = "order.placed"
	OrderClaimed   = "order.claimed"
	OrderDelivered = "order.delivered"
)

type OrderEvent struct {
	Type             string    `json:"type"`
	OrderID          int64     `json:"order_id"`
	UserID           int64     `json:"user_id"`
	DeliveryPersonID *int64    `json:"delivery_person_id,omitempty"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Bus fans order events out to every API instance over Redis pub/sub.
type Bus struct {
	rdb     *redis.Client
	channel string
}

func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb, channel: OrderChannel}
}

func (b *Bus) Publish(ctx context.Context, ev OrderEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Subscribe delivers events until ctx is cancelled. The returned channel is
// closed when the subscription ends.
func (b *Bus) Subscribe(ctx context.Context) (<-chan OrderEvent, error) {
	sub := b.rdb.Subscribe(ctx, b.channel)

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close() //nolint:errcheck // subscription never became usable
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan OrderEvent, 64)
	go func() {
		defer close(out)
		defer sub.Close() //nolint:errcheck // best-effort unsubscribe

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("dropping malformed order event", "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, OrderEvent) error { return nil }

var NoopPublisher Publisher = noopPublisher{}
