package repositories

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"agrimarket/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// List returns orders matching filter, newest first.
func (r *MockOrderRepository) List(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.BuyerID != "" && order.BuyerID != filter.BuyerID {
			continue
		}
		if filter.FarmerID != "" && order.FarmerID != filter.FarmerID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orderList = append(orderList, cloneOrder(order))
	}
	sort.Slice(orderList, func(i, j int) bool { return orderList[i].PlacedAt.After(orderList[j].PlacedAt) })
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found: %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now()
	}
	order.UpdatedAt = order.PlacedAt
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus applies a status change guarded by the expected source status.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, change models.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, ErrNotFound)
	}
	if order.Status != change.From {
		return fmt.Errorf("order %s is %s, expected %s: %w", id, order.Status, change.From, ErrStatusConflict)
	}
	order.Status = change.To
	order.CancelledBy = change.CancelledBy
	order.CancellationReason = change.CancellationReason
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
