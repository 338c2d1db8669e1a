// AngelaMos | 2026
// dto.go

package location

import (
	"time"
)

type CreateLocationRequest struct {
	Label     string   `json:"label"     validate:"max=80"`
	Address   string   `json:"address"   validate:"max=500"`
	Latitude  *float64 `json:"latitude"  validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type LocationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

func ToLocationResponse(l *Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		Label:     l.Label,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		CreatedAt: l.CreatedAt,
	}
}

func ToLocationResponseList(locations []Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locations))
	for i := range locations {
		out = append(out, ToLocationResponse(&locations[i]))
	}
	return out
}
