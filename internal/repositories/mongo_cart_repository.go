package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrimarket/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCartRepository stores one document per cart with items embedded.
// A unique index on buyer_id backs the one-cart-per-buyer rule.
type MongoCartRepository struct {
	coll *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection("carts")}
}

func (r *MongoCartRepository) GetByBuyer(ctx context.Context, buyerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"buyer_id": buyerID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
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

func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	if cart.ID == "" {
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, cart); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("cart for buyer %s already exists: %w", cart.BuyerID, ErrDuplicate)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{"$set": bson.M{
		"farmer_id":  cart.FarmerID,
		"items":      cart.Items,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("failed to update cart %s: %w", cart.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart %s not found for update: %w", cart.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoCartRepository) DeleteByBuyer(ctx context.Context, buyerID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"buyer_id": buyerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart for buyer %s: %w", buyerID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("cart for buyer %s not found for deletion: %w", buyerID, ErrNotFound)
	}
	return nil
}
