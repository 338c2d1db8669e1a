// AngelaMos | 2026
// repository.go

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	OrdersPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Summary counts "today" as the current UTC day, the same buckets
// OrdersPerDay uses.
func (r *repository) Summary(ctx context.Context) (*Summary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_deleted = FALSE) AS total_products,
			(SELECT COUNT(*) FROM carts WHERE kind = 'order') AS total_orders,
			(SELECT COUNT(*) FROM carts
			  WHERE kind = 'order'
			    AND (created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date
			) AS orders_today,
			(SELECT COUNT(*) FROM carts
			  WHERE kind = 'order' AND status = 'NEW') AS pending_orders,
			(SELECT COUNT(*) FROM users
			  WHERE role_id = 3 AND is_deleted = FALSE) AS customers`

	var s Summary
	if err := r.db.GetContext(ctx, &s, query); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	return &s, nil
}

func (r *repository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM carts
		WHERE kind = 'order'
		GROUP BY status
		ORDER BY status`

	counts := []StatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboard status: %w", err)
	}

	return counts, nil
}

// OrdersPerDay counts orders per UTC calendar day from since onwards. Days
// without orders are absent.
func (r *repository) OrdersPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	query := `
		SELECT (created_at AT TIME ZONE 'UTC')::date AS day, COUNT(*) AS count
		FROM carts
		WHERE kind = 'order' AND created_at >= $1
		GROUP BY 1
		ORDER BY 1`

	days := []DayCount{}
	if err := r.db.SelectContext(ctx, &days, query, since); err != nil {
		return nil, fmt.Errorf("dashboard weekly: %w", err)
	}

	return days, nil
}
