package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"agrimarket/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository,
// keyed by buyer.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

func cloneCart(c models.Cart) models.Cart {
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c
}

// GetByBuyer returns the buyer's cart.
func (r *MockCartRepository) GetByBuyer(_ context.Context, buyerID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[buyerID]
	if !ok {
		return nil, fmt.Errorf("cart for buyer %s not found: %w", buyerID, ErrNotFound)
	}
	cart = cloneCart(cart)
	return &cart, nil
}

// Save creates or replaces the buyer's cart.
func (r *MockCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if cart.ID == "" {
		if _, exists := r.carts[cart.BuyerID]; exists {
			return fmt.Errorf("cart for buyer %s already exists: %w", cart.BuyerID, ErrDuplicate)
		}
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
	} else if existing, ok := r.carts[cart.BuyerID]; !ok || existing.ID != cart.ID {
		return fmt.Errorf("cart %s not found for update: %w", cart.ID, ErrNotFound)
	}
	cart.UpdatedAt = now
	r.carts[cart.BuyerID] = cloneCart(*cart)
	return nil
}

// DeleteByBuyer removes the buyer's cart.
func (r *MockCartRepository) DeleteByBuyer(_ context.Context, buyerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[buyerID]; !ok {
		return fmt.Errorf("cart for buyer %s not found for deletion: %w", buyerID, ErrNotFound)
	}
	delete(r.carts, buyerID)
	return nil
}
