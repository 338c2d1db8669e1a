// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/avocado-market/avocado-api/internal/cart"
)

type CreateReviewRequest struct {
	OrderID int64   `json:"orderId"           validate:"required,gt=0"`
	Rating  int     `json:"rating"            validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type OrderResponse struct {
	cart.CartDetailResponse
}

type ReviewResponse struct {
	ID               int64     `json:"id"`
	OrderID          int64     `json:"order_id"`
	DeliveryPersonID int64     `json:"delivery_person_id"`
	ReviewerID       int64     `json:"reviewer_id"`
	Rating           int       `json:"rating"`
	Comment          *string   `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CourierReviewsResponse struct {
	DeliveryPersonID int64            `json:"delivery_person_id"`
	Count            int              `json:"count"`
	AverageRating    *float64         `json:"average_rating"`
	Reviews          []ReviewResponse `json:"reviews"`
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		OrderID:          r.OrderID,
		DeliveryPersonID: r.DeliveryPersonID,
		ReviewerID:       r.ReviewerID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		CreatedAt:        r.CreatedAt,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}
	return out
}
