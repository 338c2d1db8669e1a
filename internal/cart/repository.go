// AngelaMos | 2026
// repository.go

package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	CreateBasket(ctx context.Context, userID int64) (*Cart, error)
	GetByID(ctx context.Context, id int64) (*Cart, error)
	GetLiveBasket(ctx context.Context, userID int64) (*Cart, error)
	ListLiveBaskets(ctx context.Context, userID int64) ([]Cart, error)
	ListOrders(ctx context.Context, userID int64) ([]Cart, error)
	Abandon(ctx context.Context, id int64) error
	Checkout(ctx context.Context, id int64, locationID *int64) (*Cart, error)
	LocationOwnedBy(ctx context.Context, locationID, userID int64) (bool, error)
	Items(ctx context.Context, cartID int64) ([]Item, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const cartColumns = `id, user_id, kind, status, delivery_person_id, location_id,
	is_deleted, created_at, updated_at, claimed_at, delivered_at`

// liveBasket matches carts whose line items may still change.
const liveBasket = `kind = 'basket' AND status = 'ACTIVE' AND is_deleted = FALSE`

// CreateBasket opens a basket unless the user already has a live one. The
// partial unique index uq_carts_live_basket backs the NOT EXISTS guard.
func (r *repository) CreateBasket(ctx context.Context, userID int64) (*Cart, error) {
	query := `
		INSERT INTO carts (user_id, kind, status)
		SELECT $1, 'basket', 'ACTIVE'
		WHERE NOT EXISTS (
			SELECT 1 FROM carts
			WHERE user_id = $1 AND kind = 'basket' AND is_deleted = FALSE
		)
		RETURNING ` + cartColumns

	var c Cart
	err := r.db.GetContext(ctx, &c, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create basket: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return nil, core.MapWriteError("create basket", err)
	}

	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`

	var c Cart
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get cart: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return &c, nil
}

func (r *repository) GetLiveBasket(ctx context.Context, userID int64) (*Cart, error) {
	query := `SELECT ` + cartColumns + `
		FROM carts
		WHERE user_id = $1 AND ` + liveBasket + `
		ORDER BY created_at DESC
		LIMIT 1`

	var c Cart
	err := r.db.GetContext(ctx, &c, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get live basket: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get live basket: %w", err)
	}

	return &c, nil
}

func (r *repository) ListLiveBaskets(ctx context.Context, userID int64) ([]Cart, error) {
	query := `SELECT ` + cartColumns + `
		FROM carts
		WHERE user_id = $1 AND kind = 'basket' AND is_deleted = FALSE
		ORDER BY created_at DESC`

	carts := []Cart{}
	if err := r.db.SelectContext(ctx, &carts, query, userID); err != nil {
		return nil, fmt.Errorf("list baskets: %w", err)
	}

	return carts, nil
}

func (r *repository) ListOrders(ctx context.Context, userID int64) ([]Cart, error) {
	query := `SELECT ` + cartColumns + `
		FROM carts
		WHERE user_id = $1 AND kind = 'order'
		ORDER BY created_at DESC`

	carts := []Cart{}
	if err := r.db.SelectContext(ctx, &carts, query, userID); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return carts, nil
}

func (r *repository) Abandon(ctx context.Context, id int64) error {
	query := `
		UPDATE carts
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND kind = 'basket' AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("abandon basket: %w", err)
	}

	return core.RowsAffected(result, "abandon basket")
}

// Checkout turns a live basket into a NEW order. It returns ErrConflict
// when the cart exists but is no longer a live basket.
func (r *repository) Checkout(
	ctx context.Context,
	id int64,
	locationID *int64,
) (*Cart, error) {
	query := `
		UPDATE carts
		SET kind = 'order', status = 'NEW', is_deleted = TRUE,
		    location_id = $2, updated_at = NOW()
		WHERE id = $1 AND ` + liveBasket + `
		RETURNING ` + cartColumns

	var c Cart
	err := r.db.GetContext(ctx, &c, query, id, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.transitionMiss(ctx, "checkout", id)
	}
	if err != nil {
		return nil, core.MapWriteError("checkout", err)
	}

	return &c, nil
}

func (r *repository) transitionMiss(ctx context.Context, op string, id int64) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: cart is not an active basket: %w", op, core.ErrConflict)
}

func (r *repository) LocationOwnedBy(
	ctx context.Context,
	locationID, userID int64,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1 AND user_id = $2)`

	var owned bool
	if err := r.db.GetContext(ctx, &owned, query, locationID, userID); err != nil {
		return false, fmt.Errorf("check location: %w", err)
	}

	return owned, nil
}

func (r *repository) Items(ctx context.Context, cartID int64) ([]Item, error) {
	query := `
		SELECT cp.cart_id, cp.product_id, cp.quantity, p.title, p.price, p.images
		FROM cart_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.cart_id = $1
		ORDER BY p.title, cp.product_id`

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, cartID); err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	return items, nil
}

// AddItem inserts a line or adds to its quantity, only while the cart is a
// live basket and the product is listed.
func (r *repository) AddItem(
	ctx context.Context,
	cartID, productID int64,
	quantity int,
) error {
	query := `
		INSERT INTO cart_products (cart_id, product_id, quantity)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM carts WHERE id = $1 AND ` + liveBasket + `)
		  AND EXISTS (SELECT 1 FROM products WHERE id = $2 AND is_deleted = FALSE)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_products.quantity + EXCLUDED.quantity`

	result, err := r.db.ExecContext(ctx, query, cartID, productID, quantity)
	if err != nil {
		return core.MapWriteError("add cart item", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	if rows == 0 {
		return r.itemMiss(ctx, "add cart item", cartID)
	}

	return nil
}

func (r *repository) SetItemQuantity(
	ctx context.Context,
	cartID, productID int64,
	quantity int,
) error {
	query := `
		UPDATE cart_products cp
		SET quantity = $3
		FROM carts c
		WHERE cp.cart_id = $1 AND cp.product_id = $2
		  AND c.id = cp.cart_id
		  AND c.kind = 'basket' AND c.status = 'ACTIVE' AND c.is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, cartID, productID, quantity)
	if err != nil {
		return core.MapWriteError("update cart item", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if rows == 0 {
		return r.itemMiss(ctx, "update cart item", cartID)
	}

	return nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	query := `
		DELETE FROM cart_products cp
		USING carts c
		WHERE cp.cart_id = $1 AND cp.product_id = $2
		  AND c.id = cp.cart_id
		  AND c.kind = 'basket' AND c.status = 'ACTIVE' AND c.is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, cartID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if rows == 0 {
		return r.itemMiss(ctx, "remove cart item", cartID)
	}

	return nil
}

// itemMiss explains a zero-row line item write: a closed cart is a conflict,
// anything else means the cart, product or line does not exist.
func (r *repository) itemMiss(ctx context.Context, op string, cartID int64) error {
	var live sql.NullBool
	err := r.db.GetContext(ctx, &live,
		`SELECT (`+liveBasket+`) FROM carts WHERE id = $1`, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !live.Bool {
		return fmt.Errorf("%s: cart is closed for changes: %w", op, core.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, core.ErrNotFound)
}
