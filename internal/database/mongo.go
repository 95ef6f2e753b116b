package database

import (
	"context"
	"fmt"
	"time"

	"agrimarket/internal/config"
	"agrimarket/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func OpenMongo(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	store := NewMongoStore(db)
	store.closeFn = client.Disconnect
	return store, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := []struct{ coll, field string }{
		{"carts", "buyer_id"},
		{"users", "username"},
		{"users", "email"},
	}
	for _, idx := range unique {
		if err := createUnique(ctx, db.Collection(idx.coll), idx.field); err != nil {
			return err
		}
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "placed_at", Value: -1}}},
		{Keys: bson.D{{Key: "farmer_id", Value: 1}, {Key: "placed_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

func createUnique(ctx context.Context, coll *mongo.Collection, field string) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index %s.%s: %w", coll.Name(), field, err)
	}
	return nil
}

func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Driver:   config.DriverMongo,
		Users:    repositories.NewMongoUserRepository(db),
		Products: repositories.NewMongoProductRepository(db),
		Carts:    repositories.NewMongoCartRepository(db),
		Orders:   repositories.NewMongoOrderRepository(db),
	}
}
