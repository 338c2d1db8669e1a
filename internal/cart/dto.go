// AngelaMos | 2026
// dto.go

package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	LocationID *int64 `json:"locationId,omitempty" validate:"omitempty,gt=0"`
}

type AddItemRequest struct {
	CartID    int64 `json:"cartId"    validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"  validate:"required,gt=0,lte=999"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=999"`
}

type CartResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Kind             string     `json:"kind"`
	Status           string     `json:"status"`
	DeliveryPersonID *int64     `json:"delivery_person_id,omitempty"`
	LocationID       *int64     `json:"location_id,omitempty"`
	IsDeleted        bool       `json:"is_deleted"`
	CreatedAt        time.Time  `json:"created_at"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
}

type ItemResponse struct {
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Images    []string        `json:"images"`
}

type CartDetailResponse struct {
	CartResponse
	Items []ItemResponse  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CheckoutResponse struct {
	Order  CartResponse `json:"order"`
	Basket CartResponse `json:"basket"`
}

func ToCartResponse(c *Cart) CartResponse {
	return CartResponse{
		ID:               c.ID,
		UserID:           c.UserID,
		Kind:             c.Kind,
		Status:           c.Status,
		DeliveryPersonID: c.DeliveryPersonID,
		LocationID:       c.LocationID,
		IsDeleted:        c.IsDeleted,
		CreatedAt:        c.CreatedAt,
		ClaimedAt:        c.ClaimedAt,
		DeliveredAt:      c.DeliveredAt,
	}
}

func ToCartResponseList(carts []Cart) []CartResponse {
	out := make([]CartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, ToCartResponse(&carts[i]))
	}
	return out
}

func ToItemResponse(i *Item) ItemResponse {
	images := []string(i.Images)
	if images == nil {
		images = []string{}
	}
	return ItemResponse{
		CartID:    i.CartID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Title:     i.Title,
		Price:     i.Price,
		LineTotal: i.LineTotal(),
		Images:    images,
	}
}

func ToItemResponseList(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToItemResponse(&items[i]))
	}
	return out
}

func ToDetailResponse(c *Cart, items []Item) CartDetailResponse {
	return CartDetailResponse{
		CartResponse: ToCartResponse(c),
		Items:        ToItemResponseList(items),
		Total:        Total(items),
	}
}
