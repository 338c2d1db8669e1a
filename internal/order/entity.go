// AngelaMos | 2026
// entity.go

package order

import (
	"time"
)

type Review struct {
	ID               int64     `db:"id"`
	OrderID          int64     `db:"order_id"`
	DeliveryPersonID int64     `db:"delivery_person_id"`
	ReviewerID       int64     `db:"reviewer_id"`
	Rating           int       `db:"rating"`
	Comment          *string   `db:"comment"`
	CreatedAt        time.Time `db:"created_at"`
}

type RatingSummary struct {
	Count   int      `db:"count"`
	Average *float64 `db:"average"`
}
