// AngelaMos | 2026
// entity.go

package category

import (
	"time"
)

type Category struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Image     string    `db:"image"`
	IsDeleted bool      `db:"is_deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
