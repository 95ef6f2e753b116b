// Package database opens the configured store and exposes its repositories.
package database

import (
	"context"
	"fmt"

	"agrimarket/internal/config"
	"agrimarket/internal/repositories"

	"github.com/labstack/gommon/log"
)

// Store bundles the repositories of one backend with its lifecycle.
type Store struct {
	Driver   string
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Carts    repositories.CartRepository
	Orders   repositories.OrderRepository

	closeFn func(context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// Open connects to the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	log.Infof("opening %s store", cfg.StoreDriver)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DatabaseDSN)
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// NewMemoryStore returns a store backed by the in-memory repositories.
func NewMemoryStore() *Store {
	return &Store{
		Driver:   config.DriverMemory,
		Users:    repositories.NewMockUserRepository(),
		Products: repositories.NewMockProductRepository(),
		Carts:    repositories.NewMockCartRepository(),
		Orders:   repositories.NewMockOrderRepository(),
	}
}
