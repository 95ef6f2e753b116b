package models_test

import (
	"testing"

	"agrimarket/internal/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusAccepted,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
}

func TestOrderStatus_TransitionTable(t *testing.T) {
	allowed := map[models.OrderStatus]map[models.OrderStatus]bool{
		models.OrderStatusPending:  {models.OrderStatusAccepted: true, models.OrderStatusCancelled: true},
		models.OrderStatusAccepted: {models.OrderStatusDelivered: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, models.OrderStatusPending.IsTerminal())
	assert.False(t, models.OrderStatusAccepted.IsTerminal())
	assert.True(t, models.OrderStatusDelivered.IsTerminal())
	assert.True(t, models.OrderStatusCancelled.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, ok := models.ParseOrderStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	for _, raw := range []string{"", "pending", "Shipped", "CANCELLED"} {
		_, ok := models.ParseOrderStatus(raw)
		assert.Falsef(t, ok, "%q should not parse", raw)
	}
}

func TestTotalOf(t *testing.T) {
	items := []models.OrderItem{
		{Price: 10, Quantity: 2},
		{Price: 5, Quantity: 3},
	}
	assert.Equal(t, 35.0, models.TotalOf(items))

	// 0.1 + 0.2 style drift is rounded away.
	assert.Equal(t, 0.3, models.TotalOf([]models.OrderItem{{Price: 0.1, Quantity: 1}, {Price: 0.2, Quantity: 1}}))
	assert.Equal(t, 0.0, models.TotalOf(nil))
}

func TestOrder_IsParty(t *testing.T) {
	order := &models.Order{BuyerID: "b-1", FarmerID: "f-1"}

	assert.True(t, order.IsParty("b-1"))
	assert.True(t, order.IsParty("f-1"))
	assert.False(t, order.IsParty("x"))
	assert.False(t, order.IsParty(""))
}
