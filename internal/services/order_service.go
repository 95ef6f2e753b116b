package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
	"agrimarket/pkg/metrics"

	"github.com/labstack/gommon/log"
)

// PlaceOrderRequest carries the checkout details that are not in the cart.
type PlaceOrderRequest struct {
	DeliveryInstructions string             `json:"delivery_instructions" validate:"max=1000"`
	ContactInfo          models.ContactInfo `json:"contact_info"`
	ShippingAddress      *models.Address    `json:"shipping_address"`
}

// OrderOptions tune order placement.
type OrderOptions struct {
	// ClearCartOnPlace deletes the buyer's cart once the order is stored.
	ClearCartOnPlace bool
	Metrics          *metrics.OrderMetrics
}

// OrderService turns carts into orders and serves the order read side.
type OrderService struct {
	orders   repositories.OrderRepository
	carts    repositories.CartRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	notifier Notifier
	opts     OrderOptions
}

func NewOrderService(
	orders repositories.OrderRepository,
	carts repositories.CartRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	notifier Notifier,
	opts OrderOptions,
) *OrderService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		users:    users,
		notifier: notifier,
		opts:     opts,
	}
}

// PlaceOrder snapshots the buyer's cart at current product prices into a
// Pending order.
func (s *OrderService) PlaceOrder(ctx context.Context, buyerID string, req PlaceOrderRequest) (*models.Order, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.KindNotFound, err, "cart of buyer %s not found", buyerID)
		}
		return nil, fmt.Errorf("failed to load cart of buyer %s: %w", buyerID, err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.New(apperrors.KindEmptyCart, "cart of buyer %s is empty", buyerID)
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, notFoundOr(err, "product", line.ProductID)
		}
		items = append(items, models.SnapshotItem(product, line))
	}

	address := models.Address{}
	if req.ShippingAddress != nil {
		address = *req.ShippingAddress
	}

	order := &models.Order{
		BuyerID:              buyerID,
		FarmerID:             cart.FarmerID,
		Items:                items,
		TotalAmount:          models.TotalOf(items),
		DeliveryInstructions: req.DeliveryInstructions,
		ContactInfo:          req.ContactInfo,
		ShippingAddress:      address,
		Status:               models.OrderStatusPending,
		PlacedAt:             time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.opts.Metrics.OrderPlaced()

	if s.opts.ClearCartOnPlace {
		if err := s.carts.DeleteByBuyer(ctx, buyerID); err != nil {
			log.Warnf("order %s placed but cart of buyer %s was not cleared: %v", order.ID, buyerID, err)
		}
	}

	buyer := s.contactOf(ctx, order.BuyerID)
	farmer := s.contactOf(ctx, order.FarmerID)
	if err := s.notifier.NotifyOrderPlaced(ctx, buyer, farmer, order.Summary()); err != nil {
		log.Warnf("failed to notify placement of order %s: %v", order.ID, err)
	}

	return order, nil
}

// contactOf resolves a user to a notification contact, degrading to the bare
// ID when the user cannot be loaded.
func (s *OrderService) contactOf(ctx context.Context, userID string) models.Contact {
	if s.users == nil {
		return models.Contact{UserID: userID}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Warnf("no contact for user %s: %v", userID, err)
		return models.Contact{UserID: userID}
	}
	return user.Contact()
}

// GetOrder returns an order to one of its parties or an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, principal models.Principal) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", orderID)
	}
	if !principal.Is(models.RoleAdmin) && !order.IsParty(principal.ID) {
		return nil, apperrors.Forbidden("order %s is not yours", orderID)
	}
	return order, nil
}

// ListOrders returns the principal's orders, newest first: placed ones for a
// buyer, received ones for a farmer, all of them for an admin. status, when
// set, narrows the result.
func (s *OrderService) ListOrders(ctx context.Context, principal models.Principal, status string) ([]models.Order, error) {
	var filter repositories.OrderFilter
	switch principal.Role {
	case models.RoleBuyer:
		filter.BuyerID = principal.ID
	case models.RoleFarmer:
		filter.FarmerID = principal.ID
	case models.RoleAdmin:
	default:
		return nil, apperrors.Forbidden("role %s cannot list orders", principal.Role)
	}
	if status != "" {
		parsed, ok := models.ParseOrderStatus(status)
		if !ok {
			return nil, apperrors.New(apperrors.KindInvalidStatus, "unknown order status %q", status)
		}
		filter.Status = parsed
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
