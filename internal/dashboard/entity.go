// AngelaMos | 2026
// entity.go

package dashboard

import (
	"time"
)

type Summary struct {
	TotalProducts int64 `db:"total_products" json:"totalProducts"`
	TotalOrders   int64 `db:"total_orders"   json:"totalOrders"`
	OrdersToday   int64 `db:"orders_today"   json:"ordersToday"`
	PendingOrders int64 `db:"pending_orders" json:"pendingOrders"`
	Customers     int64 `db:"customers"      json:"customers"`
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count"  json:"count"`
}

type DayCount struct {
	Day   time.Time `db:"day"   json:"-"`
	Count int64     `db:"count" json:"count"`
}
