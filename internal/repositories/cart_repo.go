package repositories

import (
	"context"

	"agrimarket/internal/models"
)

// CartRepository stores at most one cart per buyer.
type CartRepository interface {
	GetByBuyer(ctx context.Context, buyerID string) (*models.Cart, error)
	// Save creates the cart when it has no ID and replaces it otherwise.
	Save(ctx context.Context, cart *models.Cart) error
	DeleteByBuyer(ctx context.Context, buyerID string) error
}
