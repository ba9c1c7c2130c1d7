// Package content supplies itinerary text for a job, either from a
// generative backend or from a deterministic placeholder.
package content

import (
	"context"
	"fmt"

	"itinerary-api/internal/domain"
)

// Provider produces the itinerary for a destination and trip length. A
// provider either returns a fully valid day list or an error; partial
// results are never surfaced.
type Provider interface {
	Itinerary(ctx context.Context, destination string, durationDays int) ([]domain.ItineraryDay, error)
}

// validateItinerary rejects payloads that parsed as JSON but do not form a
// usable itinerary. Accepting them would mark a job completed with content
// the read path then re-serves verbatim.
func validateItinerary(days []domain.ItineraryDay) error {
	if len(days) == 0 {
		return fmt.Errorf("%w: itinerary has no day entries", domain.ErrProviderFailure)
	}
	for i, d := range days {
		if d.Day <= 0 {
			return fmt.Errorf("%w: day entry %d has non-positive day number %d", domain.ErrProviderFailure, i, d.Day)
		}
		if d.Theme == "" {
			return fmt.Errorf("%w: day entry %d has no theme", domain.ErrProviderFailure, i)
		}
	}
	return nil
}
