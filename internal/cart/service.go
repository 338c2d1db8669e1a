// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/events"
)

var (
	errBasketExists = core.ConflictError("user already has an active cart")
	errCartClosed   = core.ConflictError("cart is no longer an active basket")
	errCartEmpty    = core.BadRequestError("cart is empty")
	errBadLocation  = core.BadRequestError("location does not belong to the cart owner")
)

type Service struct {
	repo      Repository
	tx        core.Transactor
	txRepo    func(core.DBTX) Repository
	publisher events.Publisher
}

func NewService(repo Repository, tx core.Transactor, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher
	}
	return &Service{
		repo:      repo,
		tx:        tx,
		txRepo:    NewRepository,
		publisher: publisher,
	}
}

// OpenBasket creates the first basket of a new account on db. It is handed
// to the user service so account creation and basket share a transaction.
func OpenBasket(ctx context.Context, db core.DBTX, userID int64) error {
	_, err := NewRepository(db).CreateBasket(ctx, userID)
	return err
}

func (s *Service) CreateBasket(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.repo.CreateBasket(ctx, userID)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, errBasketExists
	}
	return c, err
}

func (s *Service) GetCart(ctx context.Context, id int64) (*Cart, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ActiveBasket(ctx context.Context, userID int64) (*Cart, []Item, error) {
	c, err := s.repo.GetLiveBasket(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.Items(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}

	return c, items, nil
}

func (s *Service) ListBaskets(ctx context.Context, userID int64) ([]Cart, error) {
	return s.repo.ListLiveBaskets(ctx, userID)
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]Cart, error) {
	return s.repo.ListOrders(ctx, userID)
}

func (s *Service) Abandon(ctx context.Context, id int64) error {
	return s.repo.Abandon(ctx, id)
}

// Checkout places the basket as a NEW order and opens a fresh basket for
// the owner in the same transaction.
func (s *Service) Checkout(
	ctx context.Context,
	c *Cart,
	locationID *int64,
) (*Cart, *Cart, error) {
	ctx, span := core.StartSpan(ctx, "cart.checkout",
		attribute.Int64("cart.id", c.ID),
		attribute.Int64("user.id", c.UserID),
	)
	defer span.End()

	var order, basket *Cart
	err := s.tx.Transact(ctx, func(db core.DBTX) error {
		repo := s.txRepo(db)

		items, err := repo.Items(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errCartEmpty
		}

		if locationID != nil {
			owned, err := repo.LocationOwnedBy(ctx, *locationID, c.UserID)
			if err != nil {
				return err
			}
			if !owned {
				return errBadLocation
			}
		}

		order, err = repo.Checkout(ctx, c.ID, locationID)
		if err != nil {
			return err
		}

		basket, err = repo.CreateBasket(ctx, c.UserID)
		if err != nil {
			return fmt.Errorf("reopen basket: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) && !core.IsAppError(err) {
			err = errCartClosed
		}
		core.SetSpanError(ctx, err)
		return nil, nil, err
	}

	core.AddSpanEvent(ctx, "order.placed", attribute.Int64("order.id", order.ID))
	s.publish(ctx, events.OrderEvent{
		Type:    events.OrderPlaced,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
	})

	return order, basket, nil
}

func (s *Service) publish(ctx context.Context, ev events.OrderEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("order event publish failed", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

func (s *Service) Items(ctx context.Context, cartID int64) ([]Item, error) {
	return s.repo.Items(ctx, cartID)
}

func (s *Service) AddItem(ctx context.Context, req AddItemRequest) ([]Item, error) {
	err := s.repo.AddItem(ctx, req.CartID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, closedAsConflict(err)
	}
	return s.repo.Items(ctx, req.CartID)
}

func (s *Service) SetItemQuantity(
	ctx context.Context,
	cartID, productID int64,
	quantity int,
) ([]Item, error) {
	if err := s.repo.SetItemQuantity(ctx, cartID, productID, quantity); err != nil {
		return nil, closedAsConflict(err)
	}
	return s.repo.Items(ctx, cartID)
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID int64) error {
	return closedAsConflict(s.repo.RemoveItem(ctx, cartID, productID))
}

func closedAsConflict(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return errCartClosed
	}
	return err
}
