// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"strings"

	"github.com/avocado-market/avocado-api/internal/core"
)

var errPriceNotPositive = core.ValidationError("price must be greater than 0")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if !req.Price.IsPositive() {
		return nil, errPriceNotPositive
	}

	p := &Product{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Size:        req.Size,
		Images:      req.Images,
		CategoryID:  req.CategoryID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateProductRequest,
) (*Product, error) {
	if req.Price != nil && !req.Price.IsPositive() {
		return nil, errPriceNotPositive
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.Size != nil {
		p.Size = req.Size
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Catalogue(ctx context.Context) ([]Product, error) {
	return s.repo.All(ctx)
}

