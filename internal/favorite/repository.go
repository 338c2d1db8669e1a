// AngelaMos | 2026
// repository.go

package favorite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Favorite, error)
	GetByID(ctx context.Context, id int64) (*Favorite, error)
	Create(ctx context.Context, f *Favorite) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Favorite, error) {
	query := `
		SELECT f.id, f.user_id, f.product_id, f.created_at,
		       p.title, p.price, p.images
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1 AND p.is_deleted = FALSE
		ORDER BY f.created_at DESC, f.id DESC`

	favorites := []Favorite{}
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return favorites, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Favorite, error) {
	query := `
		SELECT f.id, f.user_id, f.product_id, f.created_at,
		       p.title, p.price, p.images
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.id = $1`

	var f Favorite
	err := r.db.GetContext(ctx, &f, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get favorite: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}

	return &f, nil
}

// Create links a live product to the user. Unknown or deleted products
// insert nothing and report ErrInvalidInput.
func (r *repository) Create(ctx context.Context, f *Favorite) error {
	query := `
		INSERT INTO favorites (user_id, product_id)
		SELECT $1, p.id FROM products p WHERE p.id = $2 AND p.is_deleted = FALSE
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, f.UserID, f.ProductID).
		Scan(&f.ID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create favorite: product %d: %w", f.ProductID, core.ErrInvalidInput)
	}

	return core.MapWriteError("create favorite", err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	return core.RowsAffected(result, "delete favorite")
}
