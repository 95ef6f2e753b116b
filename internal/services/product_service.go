package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
)

// ProductRequest is the writable part of a product listing.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Unit        string   `json:"unit" validate:"required,max=32"`
	Price       float64  `json:"price" validate:"gt=0,cents"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Available   *bool    `json:"available"`
	Varieties   []string `json:"varieties" validate:"omitempty,dive,required,max=100"`
}

func (r ProductRequest) apply(p *models.Product) {
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Unit = strings.TrimSpace(r.Unit)
	p.Price = r.Price
	p.Stock = r.Stock
	p.Varieties = r.Varieties
	if p.Varieties == nil {
		p.Varieties = []string{}
	}
	if r.Available != nil {
		p.Available = *r.Available
	}
}

// ProductService manages farmer listings, the product read model of carts and orders.
type ProductService struct {
	repo repositories.ProductRepository
}

func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts lists every product, or only farmerID's when it is set.
func (s *ProductService) GetAllProducts(ctx context.Context, farmerID string) ([]models.Product, error) {
	if farmerID != "" {
		return s.repo.ListByFarmer(ctx, farmerID)
	}
	return s.repo.GetAll(ctx)
}

func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	return product, nil
}

// CreateProduct lists a new product owned by the calling farmer.
func (s *ProductService) CreateProduct(ctx context.Context, principal models.Principal, req ProductRequest) (*models.Product, error) {
	if !principal.Is(models.RoleFarmer) {
		return nil, apperrors.Forbidden("only farmers can list products")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	product := &models.Product{FarmerID: principal.ID, Available: true}
	req.apply(product)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the listing fields of one of the farmer's products.
func (s *ProductService) UpdateProduct(ctx context.Context, principal models.Principal, id string, req ProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	product, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	req.apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, principal models.Principal, id string) error {
	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "product", id)
	}
	return nil
}

func (s *ProductService) owned(ctx context.Context, principal models.Principal, id string) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Is(models.RoleFarmer) || product.FarmerID != principal.ID {
		return nil, apperrors.Forbidden("product %s belongs to another farmer", id)
	}
	return product, nil
}

// notFoundOr turns a repository miss into a NotFound business error and
// wraps anything else as an infrastructure failure.
func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.KindNotFound, err, "%s %s not found", entity, id)
	}
	return fmt.Errorf("failed to load %s %s: %w", entity, id, err)
}
