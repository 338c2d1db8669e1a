// AngelaMos | 2026
// service.go

package favorite

import (
	"context"
	"errors"

	"github.com/avocado-market/avocado-api/internal/core"
)

var errAlreadyFavorite = core.ConflictError("product is already a favorite")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Favorite, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Add(ctx context.Context, userID, productID int64) (*Favorite, error) {
	f := &Favorite{UserID: userID, ProductID: productID}
	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, errAlreadyFavorite
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, f.ID)
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
