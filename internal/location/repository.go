// AngelaMos | 2026
// repository.go

package location

import (
	"context"
	"fmt"

	"github.com/avocado-market/avocado-api/internal/core"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Location, error)
	Create(ctx context.Context, l *Location) error
	Delete(ctx context.Context, id, userID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Location, error) {
	query := `
		SELECT id, user_id, label, address,
		       ST_Y(geom) AS latitude, ST_X(geom) AS longitude, created_at
		FROM locations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	locations := []Location{}
	if err := r.db.SelectContext(ctx, &locations, query, userID); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	return locations, nil
}

// Create stores the point as an SRID 4326 geometry; PostGIS takes x=lon, y=lat.
func (r *repository) Create(ctx context.Context, l *Location) error {
	query := `
		INSERT INTO locations (user_id, label, address, geom)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326))
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.UserID,
		l.Label,
		l.Address,
		l.Longitude,
		l.Latitude,
	).Scan(&l.ID, &l.CreatedAt)

	return core.MapWriteError("create location", err)
}

// Delete removes a location owned by userID. Locations referenced by a
// placed order are kept and report ErrInvalidInput.
func (r *repository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM locations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return core.MapWriteError("delete location", err)
	}

	return core.RowsAffected(result, "delete location")
}
