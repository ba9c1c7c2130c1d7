package content

import (
	"context"
	"fmt"
	"time"

	"itinerary-api/internal/domain"
)

// Static is the deterministic placeholder provider. It produces one sample
// day entry per requested day after an optional delay that stands in for
// generation latency.
type Static struct {
	Delay time.Duration
}

// NewStatic builds a placeholder provider with the given simulated latency.
func NewStatic(delay time.Duration) *Static {
	return &Static{Delay: delay}
}

func (s *Static) Itinerary(ctx context.Context, destination string, durationDays int) ([]domain.ItineraryDay, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	days := make([]domain.ItineraryDay, 0, durationDays)
	for i := 1; i <= durationDays; i++ {
		days = append(days, domain.ItineraryDay{
			Day:   i,
			Theme: fmt.Sprintf("Sample Day %d", i),
			Activities: []domain.Activity{
				{Time: "Morning", Description: "Sample activity in the morning.", Location: "Somewhere nice"},
				{Time: "Afternoon", Description: "Sample activity in the afternoon.", Location: "Another place"},
				{Time: "Evening", Description: "Sample dinner recommendation.", Location: "Dinner spot"},
			},
		})
	}
	return days, nil
}

var _ Provider = (*Static)(nil)
