// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/avocado-market/avocado-api/internal/cart"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/events"
)

var (
	errAlreadyClaimed = core.ConflictError("order already claimed")
	errNotDeliverable = core.ConflictError("order is not out for delivery with you")
	errNotDelivered   = core.ConflictError("order has not been delivered yet")
	errAlreadyRated   = core.ConflictError("order has already been reviewed")
	errNotYourOrder   = core.ForbiddenError("only the customer who placed the order can review it")
)

// ItemLister reads the line items of a cart or order.
type ItemLister interface {
	Items(ctx context.Context, cartID int64) ([]cart.Item, error)
}

type Service struct {
	repo      Repository
	items     ItemLister
	publisher events.Publisher
}

func NewService(repo Repository, items ItemLister, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher
	}
	return &Service{repo: repo, items: items, publisher: publisher}
}

func (s *Service) ListUnclaimed(ctx context.Context) ([]cart.Cart, error) {
	return s.repo.ListUnclaimed(ctx)
}

func (s *Service) ListByCourier(ctx context.Context, courierID int64) ([]cart.Cart, error) {
	return s.repo.ListByCourier(ctx, courierID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*cart.Cart, []cart.Item, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.items.Items(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return o, items, nil
}

func (s *Service) Claim(ctx context.Context, id, courierID int64) (*cart.Cart, error) {
	ctx, span := core.StartSpan(ctx, "order.claim",
		attribute.Int64("order.id", id),
		attribute.Int64("courier.id", courierID),
	)
	defer span.End()

	o, err := s.repo.Claim(ctx, id, courierID)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			err = errAlreadyClaimed
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, events.OrderClaimed)
	s.publish(ctx, events.OrderClaimed, o)
	return o, nil
}

func (s *Service) Deliver(ctx context.Context, id, courierID int64) (*cart.Cart, error) {
	ctx, span := core.StartSpan(ctx, "order.deliver",
		attribute.Int64("order.id", id),
		attribute.Int64("courier.id", courierID),
	)
	defer span.End()

	o, err := s.repo.Deliver(ctx, id, courierID)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			err = errNotDeliverable
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, events.OrderDelivered)
	s.publish(ctx, events.OrderDelivered, o)
	return o, nil
}

func (s *Service) publish(ctx context.Context, kind string, o *cart.Cart) {
	ev := events.OrderEvent{
		Type:             kind,
		OrderID:          o.ID,
		UserID:           o.UserID,
		DeliveryPersonID: o.DeliveryPersonID,
		Status:           o.Status,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("order event publish failed", "type", kind, "order_id", o.ID, "error", err)
	}
}

// Review records the customer's rating of a delivered order. Each order
// takes one review.
func (s *Service) Review(
	ctx context.Context,
	reviewerID int64,
	req CreateReviewRequest,
) (*Review, error) {
	ctx, span := core.StartSpan(ctx, "order.review",
		attribute.Int64("order.id", req.OrderID),
	)
	defer span.End()

	o, err := s.repo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != reviewerID {
		return nil, errNotYourOrder
	}
	if o.Status != cart.StatusDelivered || o.DeliveryPersonID == nil {
		return nil, errNotDelivered
	}

	review := &Review{
		OrderID:          o.ID,
		DeliveryPersonID: *o.DeliveryPersonID,
		ReviewerID:       reviewerID,
		Rating:           req.Rating,
		Comment:          req.Comment,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, errAlreadyRated
		}
		return nil, err
	}

	core.AddSpanEvent(ctx, "order.reviewed", attribute.Int("review.rating", review.Rating))
	return review, nil
}

func (s *Service) ReviewByOrder(ctx context.Context, orderID int64) (*Review, error) {
	return s.repo.ReviewByOrder(ctx, orderID)
}

func (s *Service) CourierReviews(ctx context.Context, courierID int64) (*CourierReviewsResponse, error) {
	reviews, err := s.repo.ReviewsByCourier(ctx, courierID)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.RatingSummary(ctx, courierID)
	if err != nil {
		return nil, err
	}

	return &CourierReviewsResponse{
		DeliveryPersonID: courierID,
		Count:            summary.Count,
		AverageRating:    summary.Average,
		Reviews:          ToReviewResponseList(reviews),
	}, nil
}
