// AngelaMos | 2026
// dto.go

package favorite

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateFavoriteRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type FavoriteResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	ProductID int64           `json:"productId"`
	Title     string          `json:"title,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Images    []string        `json:"images"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToFavoriteResponse(f *Favorite) FavoriteResponse {
	images := []string(f.Images)
	if images == nil {
		images = []string{}
	}
	return FavoriteResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		ProductID: f.ProductID,
		Title:     f.Title,
		Price:     f.Price,
		Images:    images,
		CreatedAt: f.CreatedAt,
	}
}

func ToFavoriteResponseList(favorites []Favorite) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		out = append(out, ToFavoriteResponse(&favorites[i]))
	}
	return out
}
