// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avocado-market/avocado-api/internal/cart"
	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	ListUnclaimed(ctx context.Context) ([]cart.Cart, error)
	ListByCourier(ctx context.Context, courierID int64) ([]cart.Cart, error)
	GetByID(ctx context.Context, id int64) (*cart.Cart, error)
	Claim(ctx context.Context, id, courierID int64) (*cart.Cart, error)
	Deliver(ctx context.Context, id, courierID int64) (*cart.Cart, error)
	CreateReview(ctx context.Context, review *Review) error
	ReviewByOrder(ctx context.Context, orderID int64) (*Review, error)
	ReviewsByCourier(ctx context.Context, courierID int64) ([]Review, error)
	RatingSummary(ctx context.Context, courierID int64) (*RatingSummary, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, kind, status, delivery_person_id, location_id,
	is_deleted, created_at, updated_at, claimed_at, delivered_at`

func (r *repository) ListUnclaimed(ctx context.Context) ([]cart.Cart, error) {
	query := `SELECT ` + orderColumns + `
		FROM carts
		WHERE kind = 'order' AND status = 'NEW' AND delivery_person_id IS NULL
		ORDER BY created_at`

	orders := []cart.Cart{}
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("list unclaimed orders: %w", err)
	}

	return orders, nil
}

func (r *repository) ListByCourier(ctx context.Context, courierID int64) ([]cart.Cart, error) {
	query := `SELECT ` + orderColumns + `
		FROM carts
		WHERE kind = 'order' AND delivery_person_id = $1
		ORDER BY claimed_at DESC NULLS LAST, id DESC`

	orders := []cart.Cart{}
	if err := r.db.SelectContext(ctx, &orders, query, courierID); err != nil {
		return nil, fmt.Errorf("list courier orders: %w", err)
	}

	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*cart.Cart, error) {
	query := `SELECT ` + orderColumns + ` FROM carts WHERE id = $1 AND kind = 'order'`

	var o cart.Cart
	err := r.db.GetContext(ctx, &o, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

// Claim assigns an unclaimed order. A concurrent claim that lost the race
// matches zero rows and reports ErrConflict.
func (r *repository) Claim(ctx context.Context, id, courierID int64) (*cart.Cart, error) {
	query := `
		UPDATE carts
		SET delivery_person_id = $2, status = 'Processing',
		    claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND kind = 'order'
		  AND status = 'NEW' AND delivery_person_id IS NULL
		RETURNING ` + orderColumns

	return r.transition(ctx, "claim order", query, id, courierID)
}

func (r *repository) Deliver(ctx context.Context, id, courierID int64) (*cart.Cart, error) {
	query := `
		UPDATE carts
		SET status = 'Delivered', delivered_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND kind = 'order'
		  AND status = 'Processing' AND delivery_person_id = $2
		RETURNING ` + orderColumns

	return r.transition(ctx, "deliver order", query, id, courierID)
}

func (r *repository) transition(
	ctx context.Context,
	op, query string,
	id, courierID int64,
) (*cart.Cart, error) {
	var o cart.Cart
	err := r.db.GetContext(ctx, &o, query, id, courierID)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1 AND kind = 'order')`, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil, fmt.Errorf("%s: %w", op, core.ErrConflict)
}

func (r *repository) CreateReview(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO delivery_reviews (order_id, delivery_person_id, reviewer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		review.OrderID,
		review.DeliveryPersonID,
		review.ReviewerID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)

	return core.MapWriteError("create review", err)
}

func (r *repository) ReviewByOrder(ctx context.Context, orderID int64) (*Review, error) {
	query := `
		SELECT id, order_id, delivery_person_id, reviewer_id, rating, comment, created_at
		FROM delivery_reviews
		WHERE order_id = $1`

	var review Review
	err := r.db.GetContext(ctx, &review, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

func (r *repository) ReviewsByCourier(ctx context.Context, courierID int64) ([]Review, error) {
	query := `
		SELECT id, order_id, delivery_person_id, reviewer_id, rating, comment, created_at
		FROM delivery_reviews
		WHERE delivery_person_id = $1
		ORDER BY created_at DESC`

	reviews := []Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, courierID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (r *repository) RatingSummary(ctx context.Context, courierID int64) (*RatingSummary, error) {
	query := `
		SELECT COUNT(*) AS count, AVG(rating)::float8 AS average
		FROM delivery_reviews
		WHERE delivery_person_id = $1`

	var summary RatingSummary
	if err := r.db.GetContext(ctx, &summary, query, courierID); err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}

	return &summary, nil
}
