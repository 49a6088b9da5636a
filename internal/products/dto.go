package products

import (
	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

// ProductView is the public catalog shape. Stock is exposed as a count only;
// stock item contents never leave the delivery path.
type ProductView struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Category       string    `json:"category"`
	PriceCents     int       `json:"price_cents"`
	MinQty         int       `json:"min_qty"`
	MaxQty         int       `json:"max_qty"`
	AvailableStock int       `json:"available_stock"`
}

// CreateProductInput carries the admin payload for a new catalog entry.
type CreateProductInput struct {
	Slug                 string  `json:"slug" validate:"required,min=2,max=80"`
	Name                 string  `json:"name" validate:"required,min=2,max=160"`
	Description          *string `json:"description,omitempty"`
	Category             string  `json:"category" validate:"required,min=2,max=80"`
	PriceCents           int     `json:"price_cents" validate:"required,gt=0"`
	MinQty               int     `json:"min_qty" validate:"omitempty,gte=1"`
	MaxQty               int     `json:"max_qty" validate:"omitempty,gte=1"`
	PostSaleInstructions *string `json:"post_sale_instructions,omitempty"`
}

// UpdateProductInput carries optional admin edits; nil fields stay untouched.
type UpdateProductInput struct {
	Name                 *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description          *string `json:"description,omitempty"`
	Category             *string `json:"category,omitempty" validate:"omitempty,min=2,max=80"`
	PriceCents           *int    `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	MinQty               *int    `json:"min_qty,omitempty" validate:"omitempty,gte=1"`
	MaxQty               *int    `json:"max_qty,omitempty" validate:"omitempty,gte=1"`
	IsActive             *bool   `json:"is_active,omitempty"`
	PostSaleInstructions *string `json:"post_sale_instructions,omitempty"`
}

// AddStockInput is a bulk upload of deliverable content lines.
type AddStockInput struct {
	Lines []string `json:"lines" validate:"required,min=1,dive,required"`
}

func toProductView(product models.Product, availableStock int) ProductView {
	return ProductView{
		ID:             product.ID,
		Slug:           product.Slug,
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		PriceCents:     product.PriceCents,
		MinQty:         product.MinQty,
		MaxQty:         product.MaxQty,
		AvailableStock: availableStock,
	}
}
