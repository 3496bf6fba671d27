package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/service/services/lowstocksvc"
)

// Publisher publishes dashboard notification events. Both queues are
// declared durable at construction.
type Publisher struct {
	client        *Client
	ordersQueue   string
	lowStockQueue string
}

// MustNewPublisher creates a Publisher with its queues declared.
func MustNewPublisher(client *Client) *Publisher {
	ordersQueue := viper.GetString("rabbitmq.queues.order_created")
	if ordersQueue == "" {
		ordersQueue = "salesdesk.order_created"
	}
	lowStockQueue := viper.GetString("rabbitmq.queues.low_stock")
	if lowStockQueue == "" {
		lowStockQueue = "salesdesk.low_stock"
	}

	for _, queue := range []string{ordersQueue, lowStockQueue} {
		if _, err := client.DeclareQueue(DeclareQueueConfig{
			Name:    queue,
			Durable: true,
		}); err != nil {
			panic(fmt.Sprintf("Failed to declare queue %s: %v", queue, err))
		}
	}

	return &Publisher{
		client:        client,
		ordersQueue:   ordersQueue,
		lowStockQueue: lowStockQueue,
	}
}

// PublishOrderCreated publishes an order-created notification.
func (p *Publisher) PublishOrderCreated(ev composersvc.OrderCreatedEvent) error {
	return p.publishJSON(p.ordersQueue, ev)
}

// lowStockEvent wraps a batch of alerts with the time they were observed.
type lowStockEvent struct {
	ObservedAt time.Time           `json:"observedAt"`
	Alerts     []lowstocksvc.Alert `json:"alerts"`
}

// PublishLowStock publishes a low-stock notification batch.
func (p *Publisher) PublishLowStock(alerts []lowstocksvc.Alert) error {
	return p.publishJSON(p.lowStockQueue, lowStockEvent{
		ObservedAt: time.Now().UTC(),
		Alerts:     alerts,
	})
}

func (p *Publisher) publishJSON(queue string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Channel().Publish(
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	return nil
}
