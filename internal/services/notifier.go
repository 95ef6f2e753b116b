package services

import (
	"context"
	"encoding/json"
	"fmt"

	"agrimarket/internal/models"

	"github.com/labstack/gommon/log"
)

// Routing keys of published order events.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// Notifier informs the parties of an order about what happened to it.
// Callers treat every error as non-fatal.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, buyer, farmer models.Contact, order models.OrderSummary) error
	NotifyOrderStatusChanged(ctx context.Context, order models.OrderSummary) error
}

// Publisher is satisfied by the RabbitMQ and Kafka clients.
type Publisher interface {
	Publish(ctx context.Context, routingKey, key string, body []byte) error
}

// OrderPlacedEvent is the body of an order.placed message.
type OrderPlacedEvent struct {
	Event  string              `json:"event"`
	Buyer  models.Contact      `json:"buyer"`
	Farmer models.Contact      `json:"farmer"`
	Order  models.OrderSummary `json:"order"`
}

// OrderStatusChangedEvent is the body of an order.status_changed message.
type OrderStatusChangedEvent struct {
	Event string              `json:"event"`
	Order models.OrderSummary `json:"order"`
}

// BrokerNotifier publishes order events as JSON through a Publisher.
type BrokerNotifier struct {
	publisher Publisher
}

func NewBrokerNotifier(publisher Publisher) *BrokerNotifier {
	return &BrokerNotifier{publisher: publisher}
}

func (n *BrokerNotifier) NotifyOrderPlaced(ctx context.Context, buyer, farmer models.Contact, order models.OrderSummary) error {
	return n.publish(ctx, EventOrderPlaced, order.OrderID, OrderPlacedEvent{
		Event:  EventOrderPlaced,
		Buyer:  buyer,
		Farmer: farmer,
		Order:  order,
	})
}

func (n *BrokerNotifier) NotifyOrderStatusChanged(ctx context.Context, order models.OrderSummary) error {
	return n.publish(ctx, EventOrderStatusChanged, order.OrderID, OrderStatusChangedEvent{
		Event: EventOrderStatusChanged,
		Order: order,
	})
}

func (n *BrokerNotifier) publish(ctx context.Context, routingKey, key string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}
	if err := n.publisher.Publish(ctx, routingKey, key, body); err != nil {
		return fmt.Errorf("failed to publish %s event for order %s: %w", routingKey, key, err)
	}
	return nil
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

func (LogNotifier) NotifyOrderPlaced(_ context.Context, buyer, farmer models.Contact, order models.OrderSummary) error {
	log.Infof("order %s placed by %s <%s> with farmer %s <%s>, %d items, total %.2f",
		order.OrderID, buyer.Name, buyer.Email, farmer.Name, farmer.Email, order.ItemCount, order.TotalAmount)
	return nil
}

func (LogNotifier) NotifyOrderStatusChanged(_ context.Context, order models.OrderSummary) error {
	log.Infof("order %s is now %s", order.OrderID, order.Status)
	return nil
}
