package services

import (
	"context"
	"errors"
	"fmt"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/shopspring/decimal"
)

// Bounds for the quantity of a cart line.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 10
)

type AddItemRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"min=1,max=10"`
	SelectedVariety string `json:"selected_variety" validate:"max=100"`
}

// UpdateQuantityRequest is bounds-checked by UpdateItemQuantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLine is a cart item joined with the product's current listing.
type CartLine struct {
	models.CartItem
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	LineTotal   float64 `json:"line_total"`
}

// CartView is what a buyer sees of their cart. Prices are current, not
// snapshotted, and may change until the order is placed.
type CartView struct {
	ID       string     `json:"id,omitempty"`
	BuyerID  string     `json:"buyer_id"`
	FarmerID string     `json:"farmer_id,omitempty"`
	Items    []CartLine `json:"items"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
}

// CartService stages items for a buyer. Each buyer has at most one cart and a
// cart holds products of a single farmer.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// load returns the buyer's cart, or nil when there is none.
func (s *CartService) load(ctx context.Context, buyerID string) (*models.Cart, error) {
	cart, err := s.carts.GetByBuyer(ctx, buyerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart of buyer %s: %w", buyerID, err)
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	err := s.carts.Save(ctx, cart)
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Wrap(apperrors.KindConflict, err, "cart of buyer %s was created concurrently", cart.BuyerID)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.KindNotFound, err, "cart of buyer %s was deleted concurrently", cart.BuyerID)
	}
	if err != nil {
		return fmt.Errorf("failed to save cart of buyer %s: %w", cart.BuyerID, err)
	}
	return nil
}

// AddItem puts quantity units of a product into the buyer's cart, creating the
// cart on first use.
func (s *CartService) AddItem(ctx context.Context, buyerID string, req AddItemRequest) (*models.Cart, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "product", req.ProductID)
	}
	if !product.Available {
		return nil, apperrors.New(apperrors.KindUnavailable, "product %s is not available", product.ID)
	}
	if !product.AcceptsVariety(req.SelectedVariety) {
		return nil, apperrors.ValidationFields(map[string]string{
			"SelectedVariety": fmt.Sprintf("variety %q is not offered for product %s", req.SelectedVariety, product.ID),
		})
	}

	cart, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = models.NewCart(buyerID, product.FarmerID)
	}
	if !cart.AcceptsFarmer(product.FarmerID) {
		return nil, apperrors.New(apperrors.KindMultiFarmerConflict,
			"cart holds products of farmer %s, product %s belongs to farmer %s", cart.FarmerID, product.ID, product.FarmerID)
	}

	if line, ok := cart.Item(product.ID); ok && line.Quantity+req.Quantity > MaxItemQuantity {
		return nil, apperrors.ValidationFields(map[string]string{
			"Quantity": fmt.Sprintf("cart already holds %d of product %s, at most %d allowed", line.Quantity, product.ID, MaxItemQuantity),
		})
	}

	cart.AddItem(product.FarmerID, product.ID, req.Quantity, req.SelectedVariety)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, buyerID, productID string, quantity int) (*models.Cart, error) {
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return nil, apperrors.ValidationFields(map[string]string{
			"Quantity": fmt.Sprintf("quantity must be between %d and %d", MinItemQuantity, MaxItemQuantity),
		})
	}

	cart, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperrors.NotFound("cart of buyer", buyerID)
	}
	if !cart.SetQuantity(productID, quantity) {
		return nil, apperrors.NotFound("cart item", productID)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line. Removing something that is not there is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, buyerID, productID string) (*models.Cart, error) {
	cart, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return models.NewCart(buyerID, ""), nil
	}
	if !cart.RemoveItem(productID) {
		return cart, nil
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear deletes the buyer's cart.
func (s *CartService) Clear(ctx context.Context, buyerID string) error {
	err := s.carts.DeleteByBuyer(ctx, buyerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.KindNotFound, err, "cart of buyer %s not found", buyerID)
	}
	if err != nil {
		return fmt.Errorf("failed to clear cart of buyer %s: %w", buyerID, err)
	}
	return nil
}

// Count is the number of lines in the buyer's cart.
func (s *CartService) Count(ctx context.Context, buyerID string) (int, error) {
	cart, err := s.load(ctx, buyerID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

// GetCart returns the cart priced at current product prices. A buyer without
// a cart gets an empty view.
func (s *CartService) GetCart(ctx context.Context, buyerID string) (*CartView, error) {
	cart, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	view := &CartView{BuyerID: buyerID, Items: []CartLine{}}
	if cart == nil {
		return view, nil
	}
	view.ID = cart.ID
	view.FarmerID = cart.FarmerID
	view.Count = cart.Count()

	subtotal := decimal.Zero
	for _, item := range cart.Items {
		line := CartLine{CartItem: item}
		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			// delisted since it was added; PlaceOrder will reject it
		case err != nil:
			return nil, fmt.Errorf("failed to price cart item %s: %w", item.ProductID, err)
		default:
			lineTotal := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.ProductName = product.Name
			line.Unit = product.Unit
			line.Price = product.Price
			line.Available = product.Available
			line.LineTotal = lineTotal.Round(2).InexactFloat64()
			subtotal = subtotal.Add(lineTotal)
		}
		view.Items = append(view.Items, line)
	}
	view.Subtotal = subtotal.Round(2).InexactFloat64()
	return view, nil
}
