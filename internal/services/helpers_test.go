package services_test

import (
	"context"
	"testing"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOrderPlaced(ctx context.Context, buyer, farmer models.Contact, order models.OrderSummary) error {
	args := m.Called(ctx, buyer, farmer, order)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderStatusChanged(ctx context.Context, order models.OrderSummary) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// store is an in-memory backend shared by the property tests.
type store struct {
	users    *repositories.MockUserRepository
	products *repositories.MockProductRepository
	carts    *repositories.MockCartRepository
	orders   *repositories.MockOrderRepository
}

func newStore(t *testing.T, products ...models.Product) *store {
	t.Helper()
	s := &store{
		users:    repositories.NewMockUserRepository(),
		products: repositories.NewMockProductRepository(),
		carts:    repositories.NewMockCartRepository(),
		orders:   repositories.NewMockOrderRepository(),
	}
	for i := range products {
		require.NoError(t, s.products.Create(context.Background(), &products[i]))
	}
	return s
}

func catalogue() []models.Product {
	return []models.Product{
		{ID: "p-tomato", FarmerID: "farmer-a", Name: "Tomatoes", Unit: "kg", Price: 10, Available: true, Varieties: []string{"roma", "cherry"}},
		{ID: "p-onion", FarmerID: "farmer-a", Name: "Onions", Unit: "kg", Price: 5, Available: true},
		{ID: "p-kale", FarmerID: "farmer-a", Name: "Kale", Unit: "bunch", Price: 2.5, Available: false},
		{ID: "p-mango", FarmerID: "farmer-b", Name: "Mangoes", Unit: "crate", Price: 30, Available: true},
	}
}
