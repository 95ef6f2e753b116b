package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"agrimarket/internal/config"
	"agrimarket/internal/database"
	"agrimarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	store, err := database.Open(context.Background(), &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	defer store.Close(context.Background())

	assert.Equal(t, config.DriverMemory, store.Driver)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Products)
	assert.NotNil(t, store.Carts)
	assert.NotNil(t, store.Orders)
}

func TestOpen_SQLiteMigratesAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	store, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	defer store.Close(ctx)

	product := &models.Product{FarmerID: "f-1", Name: "Tomatoes", Unit: "kg", Price: 2.5, Available: true, Varieties: []string{"cherry"}}
	require.NoError(t, store.Products.Create(ctx, product))

	got, err := store.Products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry"}, got.Varieties)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), &config.Config{StoreDriver: "redis"})
	assert.Error(t, err)
}
