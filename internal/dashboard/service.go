// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"time"
)

const (
	weekDays   = 7
	dateLayout = "2006-01-02"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *Service) Status(ctx context.Context) ([]StatusCount, error) {
	return s.repo.StatusCounts(ctx)
}

// Weekly returns one entry per day for the trailing week ending today,
// oldest first.
func (s *Service) Weekly(ctx context.Context) ([]WeeklyEntry, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(weekDays - 1))

	rows, err := s.repo.OrdersPerDay(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day.Format(dateLayout)] += row.Count
	}

	entries := make([]WeeklyEntry, 0, weekDays)
	for i := range weekDays {
		day := since.AddDate(0, 0, i)
		key := day.Format(dateLayout)
		entries = append(entries, WeeklyEntry{
			Date:    key,
			Weekday: day.Weekday().String(),
			Count:   counts[key],
		})
	}

	return entries, nil
}
