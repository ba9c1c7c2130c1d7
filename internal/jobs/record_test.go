package jobs

import (
	"testing"
	"time"

	"itinerary-api/internal/domain"
)

func TestJobRecordRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := created.Add(42 * time.Second)
	msg := "backend unavailable"

	job := &domain.Job{
		ID:           "j1",
		Status:       domain.JobStatusFailed,
		Destination:  "Lisbon",
		DurationDays: 3,
		CreatedAt:    created,
		CompletedAt:  &completed,
		Itinerary:    []domain.ItineraryDay{},
		Error:        &msg,
	}

	decoded, err := decodeJob("j1", encodeJob(job))
	if err != nil {
		t.Fatalf("decodeJob: %v", err)
	}
	if decoded.Status != domain.JobStatusFailed {
		t.Fatalf("Status = %q", decoded.Status)
	}
	if decoded.Destination != "Lisbon" || decoded.DurationDays != 3 {
		t.Fatalf("immutable fields = %q/%d", decoded.Destination, decoded.DurationDays)
	}
	if !decoded.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", decoded.CreatedAt, created)
	}
	if decoded.CompletedAt == nil || !decoded.CompletedAt.Equal(completed) {
		t.Fatalf("CompletedAt = %v, want %v", decoded.CompletedAt, completed)
	}
	if decoded.Error == nil || *decoded.Error != msg {
		t.Fatalf("Error = %v, want %q", decoded.Error, msg)
	}
	if len(decoded.Itinerary) != 0 {
		t.Fatalf("Itinerary = %#v, want empty", decoded.Itinerary)
	}
}

func TestJobRecordRoundTripWithItinerary(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job := domain.NewJob("j2", "Porto", 1, created)
	job.Status = domain.JobStatusCompleted
	job.Itinerary = []domain.ItineraryDay{{
		Day:   1,
		Theme: "Riverside",
		Activities: []domain.Activity{
			{Time: "Morning", Description: "Walk the Ribeira.", Location: "Ribeira"},
			{Time: "Evening", Description: "Port tasting.", Location: "Gaia"},
		},
	}}

	decoded, err := decodeJob("j2", encodeJob(job))
	if err != nil {
		t.Fatalf("decodeJob: %v", err)
	}
	if len(decoded.Itinerary) != 1 {
		t.Fatalf("len(Itinerary) = %d, want 1", len(decoded.Itinerary))
	}
	day := decoded.Itinerary[0]
	if day.Day != 1 || day.Theme != "Riverside" || len(day.Activities) != 2 {
		t.Fatalf("day = %#v", day)
	}
	if day.Activities[1].Location != "Gaia" {
		t.Fatalf("activity = %#v", day.Activities[1])
	}
	if decoded.CompletedAt != nil || decoded.Error != nil {
		t.Fatalf("CompletedAt/Error = %v/%v, want nil/nil", decoded.CompletedAt, decoded.Error)
	}
}

func TestEncodeJobAlwaysWritesEveryField(t *testing.T) {
	// The store patches per field; omitting an immutable field on a terminal
	// write could leave a partially reset document.
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fields := encodeJob(domain.NewJob("j3", "Lisbon", 2, created))

	for _, name := range []string{"status", "destination", "durationDays", "createdAt", "completedAt", "itinerary", "error"} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("field %q missing from encoded record", name)
		}
	}
	if !fields["completedAt"].IsNull() || !fields["error"].IsNull() {
		t.Fatal("fresh record should carry explicit nulls for completedAt and error")
	}
}

func TestDecodeJobRejectsMissingFields(t *testing.T) {
	fields := encodeJob(domain.NewJob("j4", "Lisbon", 2, time.Now()))
	delete(fields, "status")

	if _, err := decodeJob("j4", fields); err == nil {
		t.Fatal("decodeJob accepted a record without status")
	}
}
