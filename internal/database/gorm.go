package database

import (
	"context"
	"fmt"

	"agrimarket/internal/config"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenSQLite(path string) (*Store, error) {
	return openGORM(config.DriverSQLite, sqlite.Open(path))
}

func OpenPostgres(dsn string) (*Store, error) {
	return openGORM(config.DriverPostgres, postgres.Open(dsn))
}

func openGORM(driver string, dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	store := NewGORMStore(db)
	store.Driver = driver
	store.closeFn = func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return store, nil
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// NewGORMStore wires GORM repositories over an already migrated db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:    repositories.NewGORMUserRepository(db),
		Products: repositories.NewGORMProductRepository(db),
		Carts:    repositories.NewGORMCartRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
	}
}
