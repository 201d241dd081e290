package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/selimbouaziz/ateliera-backend/internal/orders"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/sendgrid"
)

const orderNotifyConsumer = "order-notify"

type mailer interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

type processedGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	Delete(ctx context.Context, consumer, eventID string) error
}

// Consumer watches order-created events and emails the shop admin a
// summary of each new order.
type Consumer struct {
	subscription *pubsub.Subscriber
	mail         mailer
	guard        processedGuard
	adminEmail   string
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(subscription *pubsub.Subscriber, mail mailer, guard processedGuard, adminEmail string, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if strings.TrimSpace(adminEmail) == "" {
		return nil, fmt.Errorf("admin email required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		mail:         mail,
		guard:        guard,
		adminEmail:   strings.TrimSpace(adminEmail),
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != orders.EventTypeOrderCreated {
		c.logg.Info(logCtx, "skipping non-order event")
		return processResult{ack: true}
	}

	var event orders.OrderCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode order event", err)
		return processResult{ack: true}
	}
	if strings.TrimSpace(event.OrderID) == "" {
		c.logg.Warn(logCtx, "order id missing from event")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithOrderRef(logCtx, event.OrderReference)

	already, err := c.guard.CheckAndMarkProcessed(ctx, orderNotifyConsumer, event.OrderID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "order already notified")
		return processResult{ack: true}
	}

	if err := c.mail.Send(ctx, c.buildMessage(event)); err != nil {
		c.logg.Error(logCtx, "admin notification failed", err)
		_ = c.guard.Delete(ctx, orderNotifyConsumer, event.OrderID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "admin notified of new order")
	return processResult{ack: true}
}

func (c *Consumer) buildMessage(event orders.OrderCreatedEvent) sendgrid.Message {
	lines := []string{
		fmt.Sprintf("Order %s was just placed.", event.OrderReference),
		fmt.Sprintf("Customer: %s <%s>", event.CustomerName, event.CustomerEmail),
		fmt.Sprintf("Items: %d", event.ItemsCount),
		fmt.Sprintf("Total: %.2f", event.TotalAmount),
		fmt.Sprintf("Payment: %s", event.OrderType),
	}
	return sendgrid.Message{
		To:       c.adminEmail,
		Subject:  "New order " + event.OrderReference,
		TextBody: strings.Join(lines, "\n"),
	}
}
