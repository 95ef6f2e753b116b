package repositories

import (
	"context"

	"agrimarket/internal/models"
)

// OrderFilter narrows order listings. Empty fields match everything.
type OrderFilter struct {
	BuyerID  string
	FarmerID string
	Status   models.OrderStatus
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus applies change only if the stored status still equals
	// change.From. Nothing else on the order is writable.
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
}
