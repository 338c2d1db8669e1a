// AngelaMos | 2026
// dto.go

package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

type CreateProductRequest struct {
	Title       string          `json:"title"       validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Size        []string        `json:"size"        validate:"max=20,dive,min=1,max=40"`
	Images      []string        `json:"images"      validate:"max=10,dive,url"`
	CategoryID  *int64          `json:"categoryId"  validate:"omitempty,gt=0"`
}

type UpdateProductRequest struct {
	Title       *string          `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Size        []string         `json:"size,omitempty"        validate:"omitempty,max=20,dive,min=1,max=40"`
	Images      []string         `json:"images,omitempty"      validate:"omitempty,max=10,dive,url"`
	CategoryID  *int64           `json:"categoryId,omitempty"  validate:"omitempty,gt=0"`
}

type ListProductsParams struct {
	Page       int
	PageSize   int
	Search     string
	CategoryID int64
}

func (p *ListProductsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p ListProductsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProductResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Size        []string        `json:"size"`
	Images      []string        `json:"images"`
	CategoryID  *int64          `json:"categoryId"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Size:        nonNil(p.Size),
		Images:      nonNil(p.Images),
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
