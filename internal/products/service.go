package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/itsrogermachado/novaeramtds-sub001/pkg/db"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

// Service exposes the catalog to the storefront and the admin panel.
type Service interface {
	List(ctx context.Context) ([]ProductView, error)
	GetBySlug(ctx context.Context, slug string) (*ProductView, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) error
	AddStock(ctx context.Context, productID uuid.UUID, input AddStockInput) (int, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]ProductView, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, product := range list {
		ids = append(ids, product.ID)
	}
	counts, err := s.repo.CountAvailableStock(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock")
	}

	views := make([]ProductView, 0, len(list))
	for _, product := range list {
		views = append(views, toProductView(product, counts[product.ID]))
	}
	return views, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductView, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}

	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	counts, err := s.repo.CountAvailableStock(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock")
	}

	view := toProductView(*product, counts[product.ID])
	return &view, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	minQty := input.MinQty
	if minQty <= 0 {
		minQty = 1
	}
	maxQty := input.MaxQty
	if maxQty <= 0 {
		maxQty = 10
	}
	if maxQty < minQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_qty must be >= min_qty")
	}

	product := &models.Product{
		Slug:                 strings.TrimSpace(strings.ToLower(input.Slug)),
		Name:                 strings.TrimSpace(input.Name),
		Description:          input.Description,
		Category:             strings.TrimSpace(input.Category),
		PriceCents:           input.PriceCents,
		MinQty:               minQty,
		MaxQty:               maxQty,
		IsActive:             true,
		PostSaleInstructions: input.PostSaleInstructions,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	view := toProductView(*created, 0)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		updates["price_cents"] = *input.PriceCents
	}
	if input.MinQty != nil {
		updates["min_qty"] = *input.MinQty
	}
	if input.MaxQty != nil {
		updates["max_qty"] = *input.MaxQty
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.PostSaleInstructions != nil {
		updates["post_sale_instructions"] = *input.PostSaleInstructions
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return nil
}

func (s *service) AddStock(ctx context.Context, productID uuid.UUID, input AddStockInput) (int, error) {
	if productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	items := make([]models.StockItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, models.StockItem{
			ProductID: productID,
			Content:   line,
		})
	}
	if len(items) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no stock lines provided")
	}

	if err := s.repo.AddStockItems(ctx, items); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add stock items")
	}
	return len(items), nil
}
