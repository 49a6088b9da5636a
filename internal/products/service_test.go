package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

type stubCatalogRepo struct {
	products map[string]*models.Product
	counts   map[uuid.UUID]int
	created  *models.Product
	stock    []models.StockItem
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) ListActive(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	for _, product := range s.products {
		if product.IsActive {
			list = append(list, *product)
		}
	}
	return list, nil
}

func (s *stubCatalogRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if product, ok := s.products[slug]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for _, product := range s.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var list []models.Product
	for _, id := range ids {
		for _, product := range s.products {
			if product.ID == id && product.IsActive {
				list = append(list, *product)
			}
		}
	}
	return list, nil
}

func (s *stubCatalogRepo) CountAvailableStock(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.counts, nil
}

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.created = product
	return product, nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCatalogRepo) AddStockItems(ctx context.Context, items []models.StockItem) error {
	s.stock = append(s.stock, items...)
	return nil
}

func (s *stubCatalogRepo) ReserveStockItems(ctx context.Context, productID uuid.UUID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error) {
	return nil, nil
}

func (s *stubCatalogRepo) ReleaseStockItems(ctx context.Context, orderItemID uuid.UUID) error {
	return nil
}

func (s *stubCatalogRepo) MarkStockDelivered(ctx context.Context, orderItemID uuid.UUID) ([]models.StockItem, error) {
	return nil, nil
}

func TestGetBySlugHidesInactive(t *testing.T) {
	inactive := &models.Product{ID: uuid.New(), Slug: "retired", Name: "Retired", IsActive: false}
	svc, err := NewService(&stubCatalogRepo{products: map[string]*models.Product{"retired": inactive}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetBySlug(context.Background(), "retired")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetBySlugNormalizesInput(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Slug: "netflix-30d", Name: "Netflix", IsActive: true}
	repo := &stubCatalogRepo{
		products: map[string]*models.Product{"netflix-30d": product},
		counts:   map[uuid.UUID]int{product.ID: 7},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	view, err := svc.GetBySlug(context.Background(), "  Netflix-30d ")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if view.AvailableStock != 7 {
		t.Fatalf("expected stock 7, got %d", view.AvailableStock)
	}
}

func TestCreateRejectsInvertedQtyBounds(t *testing.T) {
	svc, err := NewService(&stubCatalogRepo{products: map[string]*models.Product{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateProductInput{
		Slug:       "bad-bounds",
		Name:       "Bad Bounds",
		Category:   "vpn",
		PriceCents: 1000,
		MinQty:     5,
		MaxQty:     2,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddStockSkipsBlankLines(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Slug: "vpn-90d", Name: "VPN", IsActive: true}
	repo := &stubCatalogRepo{products: map[string]*models.Product{"vpn-90d": product}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	added, err := svc.AddStock(context.Background(), product.ID, AddStockInput{
		Lines: []string{"user1:pass1", "   ", "user2:pass2"},
	})
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if added != 2 || len(repo.stock) != 2 {
		t.Fatalf("expected 2 stock items, got %d", added)
	}
}
