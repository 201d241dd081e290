package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/selimbouaziz/ateliera-backend/pkg/pubsub"
)

const publishTimeout = 15 * time.Second

// EventTypeOrderCreated tags the message so consumers can route on it.
const EventTypeOrderCreated = "order.created"

type pubsubPublisher struct {
	publisher *gcppubsub.Publisher
}

// NewEventPublisher wraps the orders topic publisher. Returns nil when
// the topic is not configured so callers can skip eventing entirely.
func NewEventPublisher(client *pubsub.Client) EventPublisher {
	if client == nil {
		return nil
	}
	publisher := client.OrdersPublisher()
	if publisher == nil {
		return nil
	}
	return &pubsubPublisher{publisher: publisher}
}

func (p *pubsubPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order created event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := p.publisher.Publish(ctx, &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": EventTypeOrderCreated,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order created event: %w", err)
	}
	return nil
}
