package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey, key string, body []byte) error {
	args := m.Called(ctx, routingKey, key, body)
	return args.Error(0)
}

func TestBrokerNotifier_NotifyOrderPlaced(t *testing.T) {
	publisher := new(MockPublisher)
	notifier := services.NewBrokerNotifier(publisher)

	var body []byte
	publisher.On("Publish", mock.Anything, services.EventOrderPlaced, "o-1", mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(3).([]byte) }).
		Return(nil).Once()

	err := notifier.NotifyOrderPlaced(context.Background(),
		models.Contact{UserID: "b-1", Email: "b@example.com"},
		models.Contact{UserID: "f-1", Email: "f@example.com"},
		models.OrderSummary{OrderID: "o-1", Status: models.OrderStatusPending, TotalAmount: 35})
	require.NoError(t, err)
	publisher.AssertExpectations(t)

	var event services.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, services.EventOrderPlaced, event.Event)
	assert.Equal(t, "f@example.com", event.Farmer.Email)
	assert.Equal(t, 35.0, event.Order.TotalAmount)
}

func TestBrokerNotifier_PublishError(t *testing.T) {
	publisher := new(MockPublisher)
	notifier := services.NewBrokerNotifier(publisher)

	publisher.On("Publish", mock.Anything, services.EventOrderStatusChanged, "o-1", mock.Anything).
		Return(errors.New("channel closed")).Once()

	err := notifier.NotifyOrderStatusChanged(context.Background(), models.OrderSummary{OrderID: "o-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}
