// AngelaMos | 2026
// entity.go

package cart

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	KindBasket = "basket"
	KindOrder  = "order"
)

const (
	StatusActive     = "ACTIVE"
	StatusNew        = "NEW"
	StatusProcessing = "Processing"
	StatusDelivered  = "Delivered"
)

type Cart struct {
	ID               int64      `db:"id"`
	UserID           int64      `db:"user_id"`
	Kind             string     `db:"kind"`
	Status           string     `db:"status"`
	DeliveryPersonID *int64     `db:"delivery_person_id"`
	LocationID       *int64     `db:"location_id"`
	IsDeleted        bool       `db:"is_deleted"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	ClaimedAt        *time.Time `db:"claimed_at"`
	DeliveredAt      *time.Time `db:"delivered_at"`
}

// IsLiveBasket reports whether line items may still change.
func (c *Cart) IsLiveBasket() bool {
	return c.Kind == KindBasket && c.Status == StatusActive && !c.IsDeleted
}

type Item struct {
	CartID    int64           `db:"cart_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Title     string          `db:"title"`
	Price     decimal.Decimal `db:"price"`
	Images    pq.StringArray  `db:"images"`
}

func (i *Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}
