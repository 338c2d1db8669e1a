// AngelaMos | 2026
// entity.go

package product

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Size        pq.StringArray  `db:"size"`
	Images      pq.StringArray  `db:"images"`
	CategoryID  *int64          `db:"category_id"`
	IsDeleted   bool            `db:"is_deleted"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
