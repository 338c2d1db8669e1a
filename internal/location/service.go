// AngelaMos | 2026
// service.go

package location

import (
	"context"
	"errors"
	"strings"

	"github.com/avocado-market/avocado-api/internal/core"
)

var errLocationInUse = core.ConflictError("location is attached to an order")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Location, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Create(
	ctx context.Context,
	userID int64,
	req CreateLocationRequest,
) (*Location, error) {
	l := &Location{
		UserID:    userID,
		Label:     strings.TrimSpace(req.Label),
		Address:   strings.TrimSpace(req.Address),
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, core.ErrInvalidInput) {
		return errLocationInUse
	}
	return err
}
