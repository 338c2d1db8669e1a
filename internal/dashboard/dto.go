// AngelaMos | 2026
// dto.go

package dashboard

type WeeklyEntry struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Count   int64  `json:"count"`
}
