// AngelaMos | 2026
// entity.go

package favorite

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Favorite struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ProductID int64     `db:"product_id"`
	CreatedAt time.Time `db:"created_at"`

	Title  string          `db:"title"`
	Price  decimal.Decimal `db:"price"`
	Images pq.StringArray  `db:"images"`
}
