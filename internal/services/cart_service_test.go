package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
	"agrimarket/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem_MergesSameProduct(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 2})
	require.NoError(t, err)
	cart, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "farmer-a", cart.FarmerID)

	stored, err := s.carts.GetByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestCartService_AddItem_RejectsSecondFarmer(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 1})
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-mango", Quantity: 1})
	assert.True(t, errors.Is(err, apperrors.ErrMultiFarmerConflict))

	stored, err := s.carts.GetByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "p-tomato", stored.Items[0].ProductID)
	assert.Equal(t, "farmer-a", stored.FarmerID)
}

func TestCartService_AddItem_EmptiedCartTakesNewFarmer(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 1})
	require.NoError(t, err)
	_, err = carts.RemoveItem(ctx, "buyer-1", "p-tomato")
	require.NoError(t, err)

	cart, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-mango", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "farmer-b", cart.FarmerID)
}

func TestCartService_AddItem_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	tests := []struct {
		name string
		req  services.AddItemRequest
		want error
	}{
		{"missing product id", services.AddItemRequest{Quantity: 1}, apperrors.ErrValidation},
		{"zero quantity", services.AddItemRequest{ProductID: "p-tomato", Quantity: 0}, apperrors.ErrValidation},
		{"quantity above cap", services.AddItemRequest{ProductID: "p-tomato", Quantity: 11}, apperrors.ErrValidation},
		{"unknown product", services.AddItemRequest{ProductID: "p-ghost", Quantity: 1}, apperrors.ErrNotFound},
		{"unavailable product", services.AddItemRequest{ProductID: "p-kale", Quantity: 1}, apperrors.ErrUnavailable},
		{"undeclared variety", services.AddItemRequest{ProductID: "p-tomato", Quantity: 1, SelectedVariety: "beefsteak"}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := carts.AddItem(ctx, "buyer-1", tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	count, err := carts.Count(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCartService_AddItem_CapsMergedQuantity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: math.MaxInt})
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 8})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 3})
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)

	stored, err := s.carts.GetByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Items[0].Quantity)

	cart, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, services.MaxItemQuantity, cart.Items[0].Quantity)

	orders := services.NewOrderService(s.orders, s.carts, s.products, s.users, services.LogNotifier{}, services.OrderOptions{})
	order, err := orders.PlaceOrder(ctx, "buyer-1", services.PlaceOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, order.TotalAmount)
}

// vanishingCartRepository deletes the cart right after handing it out, as a
// concurrent Clear would.
type vanishingCartRepository struct {
	*repositories.MockCartRepository
}

func (r vanishingCartRepository) GetByBuyer(ctx context.Context, buyerID string) (*models.Cart, error) {
	cart, err := r.MockCartRepository.GetByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := r.MockCartRepository.DeleteByBuyer(ctx, buyerID); err != nil {
		return nil, err
	}
	return cart, nil
}

func TestCartService_CartDeletedDuringUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	_, err := services.NewCartService(s.carts, s.products).AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 1})
	require.NoError(t, err)

	carts := services.NewCartService(vanishingCartRepository{s.carts}, s.products)
	_, err = carts.UpdateItemQuantity(ctx, "buyer-1", "p-onion", 4)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)

	_, err = s.carts.GetByBuyer(ctx, "buyer-1")
	assert.True(t, errors.Is(err, repositories.ErrNotFound), "cart must not be resurrected")
}

func TestCartService_UpdateItemQuantity_Bounds(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 4})
	require.NoError(t, err)

	for _, q := range []int{0, 11, -1} {
		_, err := carts.UpdateItemQuantity(ctx, "buyer-1", "p-onion", q)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "quantity %d", q)
	}
	for _, q := range []int{1, 10} {
		cart, err := carts.UpdateItemQuantity(ctx, "buyer-1", "p-onion", q)
		require.NoError(t, err, "quantity %d", q)
		assert.Equal(t, q, cart.Items[0].Quantity)
	}

	_, err = carts.UpdateItemQuantity(ctx, "buyer-1", "p-tomato", 2)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = carts.UpdateItemQuantity(ctx, "buyer-2", "p-onion", 2)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCartService_RemoveItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 1})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 1})
	require.NoError(t, err)

	first, err := carts.RemoveItem(ctx, "buyer-1", "p-onion")
	require.NoError(t, err)
	second, err := carts.RemoveItem(ctx, "buyer-1", "p-onion")
	require.NoError(t, err)
	assert.Equal(t, first.Items, second.Items)
	assert.Len(t, second.Items, 1)

	// No cart at all is not an error either
	empty, err := carts.RemoveItem(ctx, "buyer-2", "p-onion")
	require.NoError(t, err)
	assert.Zero(t, empty.Count())
}

func TestCartService_ClearAndCount(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	assert.True(t, errors.Is(carts.Clear(ctx, "buyer-1"), apperrors.ErrNotFound))

	_, err := carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 3})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 1})
	require.NoError(t, err)

	count, err := carts.Count(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, carts.Clear(ctx, "buyer-1"))
	count, err = carts.Count(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCartService_GetCart(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, catalogue()...)
	carts := services.NewCartService(s.carts, s.products)

	view, err := carts.GetCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal)

	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-tomato", Quantity: 2, SelectedVariety: "roma"})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "buyer-1", services.AddItemRequest{ProductID: "p-onion", Quantity: 3})
	require.NoError(t, err)

	view, err = carts.GetCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, 35.0, view.Subtotal)
	assert.Equal(t, "roma", view.Items[0].SelectedVariety)
	assert.Equal(t, "Tomatoes", view.Items[0].ProductName)

	// Current prices, not snapshots
	require.NoError(t, s.products.Update(ctx, &models.Product{ID: "p-onion", FarmerID: "farmer-a", Name: "Onions", Unit: "kg", Price: 6, Available: true}))
	view, err = carts.GetCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 38.0, view.Subtotal)
}
