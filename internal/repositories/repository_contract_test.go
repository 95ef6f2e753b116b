package repositories_test

import (
	"context"
	"errors"
	"time"

	"agrimarket/internal/database"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/stretchr/testify/suite"
)

// ContractSuite checks that every store backend honours the same repository
// semantics. Backends embed it and provide newStore.
type ContractSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() *database.Store
	store    *database.Store
}

func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *ContractSuite) TestProductLifecycle() {
	products := s.store.Products

	tomato := &models.Product{FarmerID: "farmer-a", Name: "Tomatoes", Unit: "kg", Price: 2.5, Stock: 10, Available: true, Varieties: []string{"roma"}}
	s.Require().NoError(products.Create(s.ctx, tomato))
	s.Require().NotEmpty(tomato.ID)
	time.Sleep(2 * time.Millisecond)
	mango := &models.Product{FarmerID: "farmer-b", Name: "Mangoes", Unit: "crate", Price: 30, Available: true}
	s.Require().NoError(products.Create(s.ctx, mango))

	got, err := products.GetByID(s.ctx, tomato.ID)
	s.Require().NoError(err)
	s.Equal("Tomatoes", got.Name)
	s.Equal([]string{"roma"}, got.Varieties)

	all, err := products.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	mine, err := products.ListByFarmer(s.ctx, "farmer-a")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(tomato.ID, mine[0].ID)

	got.Price = 3
	got.Available = false
	s.Require().NoError(products.Update(s.ctx, got))
	got, err = products.GetByID(s.ctx, tomato.ID)
	s.Require().NoError(err)
	s.Equal(3.0, got.Price)
	s.False(got.Available)

	s.Require().NoError(products.Delete(s.ctx, tomato.ID))
	_, err = products.GetByID(s.ctx, tomato.ID)
	s.True(errors.Is(err, repositories.ErrNotFound))
	s.True(errors.Is(products.Delete(s.ctx, tomato.ID), repositories.ErrNotFound))
	s.True(errors.Is(products.Update(s.ctx, &models.Product{ID: "missing", Name: "x"}), repositories.ErrNotFound))
}

func (s *ContractSuite) TestUserUniqueness() {
	users := s.store.Users

	user := &models.User{Username: "ann", Email: "ann@example.com", Password: "hash", Role: models.RoleFarmer}
	s.Require().NoError(users.Create(s.ctx, user))

	err := users.Create(s.ctx, &models.User{Username: "ann", Email: "other@example.com", Role: models.RoleBuyer})
	s.True(errors.Is(err, repositories.ErrDuplicate), "got %v", err)
	err = users.Create(s.ctx, &models.User{Username: "bob", Email: "ann@example.com", Role: models.RoleBuyer})
	s.True(errors.Is(err, repositories.ErrDuplicate), "got %v", err)

	byEmail, err := users.GetByEmail(s.ctx, "ann@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)

	byID, err := users.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleFarmer, byID.Role)

	_, err = users.GetByUsername(s.ctx, "nobody")
	s.True(errors.Is(err, repositories.ErrNotFound))
}

func (s *ContractSuite) TestCartSaveReplacesItems() {
	carts := s.store.Carts

	_, err := carts.GetByBuyer(s.ctx, "buyer-1")
	s.True(errors.Is(err, repositories.ErrNotFound))

	cart := models.NewCart("buyer-1", "farmer-a")
	cart.AddItem("farmer-a", "p-1", 2, "roma")
	cart.AddItem("farmer-a", "p-2", 1, "")
	s.Require().NoError(carts.Save(s.ctx, cart))
	s.Require().NotEmpty(cart.ID)

	stored, err := carts.GetByBuyer(s.ctx, "buyer-1")
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 2)
	s.Equal("p-1", stored.Items[0].ProductID)
	s.Equal("roma", stored.Items[0].SelectedVariety)

	stored.RemoveItem("p-1")
	stored.AddItem("farmer-a", "p-2", 4, "")
	s.Require().NoError(carts.Save(s.ctx, stored))

	stored, err = carts.GetByBuyer(s.ctx, "buyer-1")
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 1)
	s.Equal(5, stored.Items[0].Quantity)

	err = carts.Save(s.ctx, models.NewCart("buyer-1", "farmer-b"))
	s.True(errors.Is(err, repositories.ErrDuplicate), "got %v", err)

	s.Require().NoError(carts.DeleteByBuyer(s.ctx, "buyer-1"))
	_, err = carts.GetByBuyer(s.ctx, "buyer-1")
	s.True(errors.Is(err, repositories.ErrNotFound))
	s.True(errors.Is(carts.DeleteByBuyer(s.ctx, "buyer-1"), repositories.ErrNotFound))

	// Saving a cart deleted in the meantime must not bring it back.
	stored.AddItem("farmer-a", "p-3", 1, "")
	err = carts.Save(s.ctx, stored)
	s.True(errors.Is(err, repositories.ErrNotFound), "got %v", err)
	_, err = carts.GetByBuyer(s.ctx, "buyer-1")
	s.True(errors.Is(err, repositories.ErrNotFound))
}

func (s *ContractSuite) newOrder(buyerID, farmerID string, placedAt time.Time) *models.Order {
	items := []models.OrderItem{
		{ProductID: "p-1", ProductName: "Tomatoes", Unit: "kg", Price: 10, Quantity: 2, SelectedVariety: "roma"},
		{ProductID: "p-2", ProductName: "Onions", Unit: "kg", Price: 5, Quantity: 3},
	}
	order := &models.Order{
		BuyerID:         buyerID,
		FarmerID:        farmerID,
		Items:           items,
		TotalAmount:     models.TotalOf(items),
		ContactInfo:     models.ContactInfo{Name: "Bea", Phone: "555"},
		ShippingAddress: models.Address{City: "Kisumu"},
		Status:          models.OrderStatusPending,
		PlacedAt:        placedAt,
	}
	s.Require().NoError(s.store.Orders.Create(s.ctx, order))
	return order
}

func (s *ContractSuite) TestOrderSnapshotAndListing() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	older := s.newOrder("buyer-1", "farmer-a", now.Add(-time.Hour))
	newer := s.newOrder("buyer-1", "farmer-b", now)
	s.newOrder("buyer-2", "farmer-a", now.Add(-30*time.Minute))

	got, err := s.store.Orders.GetByID(s.ctx, older.ID)
	s.Require().NoError(err)
	s.Equal(35.0, got.TotalAmount)
	s.Require().Len(got.Items, 2)
	s.Equal("roma", got.Items[0].SelectedVariety)
	s.Equal("Kisumu", got.ShippingAddress.City)
	s.Equal("Bea", got.ContactInfo.Name)

	mine, err := s.store.Orders.List(s.ctx, repositories.OrderFilter{BuyerID: "buyer-1"})
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(newer.ID, mine[0].ID)
	s.Equal(older.ID, mine[1].ID)

	received, err := s.store.Orders.List(s.ctx, repositories.OrderFilter{FarmerID: "farmer-a"})
	s.Require().NoError(err)
	s.Len(received, 2)

	_, err = s.store.Orders.GetByID(s.ctx, "missing")
	s.True(errors.Is(err, repositories.ErrNotFound))
}

func (s *ContractSuite) TestOrderUpdateStatusIsConditional() {
	order := s.newOrder("buyer-1", "farmer-a", time.Now().UTC())
	orders := s.store.Orders

	s.Require().NoError(orders.UpdateStatus(s.ctx, order.ID, models.StatusChange{
		From: models.OrderStatusPending, To: models.OrderStatusCancelled,
		CancelledBy: models.CancelledByFarmer, CancellationReason: "hail",
	}))

	err := orders.UpdateStatus(s.ctx, order.ID, models.StatusChange{From: models.OrderStatusPending, To: models.OrderStatusAccepted})
	s.True(errors.Is(err, repositories.ErrStatusConflict), "got %v", err)

	err = orders.UpdateStatus(s.ctx, "missing", models.StatusChange{From: models.OrderStatusPending, To: models.OrderStatusAccepted})
	s.True(errors.Is(err, repositories.ErrNotFound), "got %v", err)

	stored, err := orders.GetByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCancelled, stored.Status)
	s.Equal(models.CancelledByFarmer, stored.CancelledBy)
	s.Equal("hail", stored.CancellationReason)
	s.Len(stored.Items, 2)

	cancelled, err := orders.List(s.ctx, repositories.OrderFilter{Status: models.OrderStatusCancelled})
	s.Require().NoError(err)
	s.Len(cancelled, 1)
}
