package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrimarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository. Items live
// in cart_items and are rewritten as a whole on every Save.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func orderedCartItems(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.id asc")
}

// GetByBuyer retrieves the buyer's cart with its items in insertion order.
func (r *GORMCartRepository) GetByBuyer(ctx context.Context, buyerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", orderedCartItems).
		Where("buyer_id = ?", buyerID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart for buyer %s not found: %w", buyerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for buyer %s: %w", buyerID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save creates the cart or replaces its farmer and items.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		items := make([]models.CartItem, len(cart.Items))
		copy(items, cart.Items)

		if cart.ID == "" {
			cart.ID = uuid.New().String()
			cart.CreatedAt = now
			cart.UpdatedAt = now
			if err := tx.Omit("Items").Create(cart).Error; err != nil {
				cart.ID = ""
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("cart for buyer %s already exists: %w", cart.BuyerID, ErrDuplicate)
				}
				return fmt.Errorf("failed to create cart: %w", err)
			}
		} else {
			cart.UpdatedAt = now
			res := tx.Model(&models.Cart{}).
				Where("id = ?", cart.ID).
				Updates(map[string]any{"farmer_id": cart.FarmerID, "updated_at": now})
			if res.Error != nil {
				return fmt.Errorf("failed to update cart %s: %w", cart.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("cart %s not found for update: %w", cart.ID, ErrNotFound)
			}
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear items of cart %s: %w", cart.ID, err)
			}
		}

		for i := range items {
			items[i].ID = 0
			items[i].CartID = cart.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to write items of cart %s: %w", cart.ID, err)
			}
		}
		cart.Items = items
		return nil
	})
}

// DeleteByBuyer deletes the buyer's cart and its items.
func (r *GORMCartRepository) DeleteByBuyer(ctx context.Context, buyerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("buyer_id = ?", buyerID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart for buyer %s not found for deletion: %w", buyerID, ErrNotFound)
			}
			return fmt.Errorf("failed to get cart for buyer %s: %w", buyerID, err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of cart %s: %w", cart.ID, err)
		}
		if err := tx.Delete(&models.Cart{}, "id = ?", cart.ID).Error; err != nil {
			return fmt.Errorf("failed to delete cart %s: %w", cart.ID, err)
		}
		return nil
	})
}
