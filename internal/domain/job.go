package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus enumerates job lifecycle states. A job starts processing and
// moves exactly once to completed or failed; both are terminal.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Activity is one entry in a day's plan.
type Activity struct {
	Time        string `json:"time"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ItineraryDay groups the activities planned for one day of the trip.
type ItineraryDay struct {
	Day        int        `json:"day"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// Job is the durable record of one itinerary generation request.
// Destination, DurationDays and CreatedAt are immutable after creation;
// CompletedAt is set once, when the job reaches a terminal state.
type Job struct {
	ID           string         `json:"jobId"`
	Status       JobStatus      `json:"status"`
	Destination  string         `json:"destination"`
	DurationDays int            `json:"durationDays"`
	CreatedAt    time.Time      `json:"createdAt"`
	CompletedAt  *time.Time     `json:"completedAt"`
	Itinerary    []ItineraryDay `json:"itinerary"`
	Error        *string        `json:"error"`
}

// NewJob builds the initial processing record for a request.
func NewJob(id, destination string, durationDays int, createdAt time.Time) *Job {
	return &Job{
		ID:           id,
		Status:       JobStatusProcessing,
		Destination:  destination,
		DurationDays: durationDays,
		CreatedAt:    createdAt,
		Itinerary:    []ItineraryDay{},
	}
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ValidateItineraryRequest checks the creation parameters. Violations are
// reported as ErrInvalidRequest so the transport layer can map them to a
// client error without a document ever being written.
func ValidateItineraryRequest(destination string, durationDays int) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: destination must be a non-empty string", ErrInvalidRequest)
	}
	if durationDays <= 0 {
		return fmt.Errorf("%w: durationDays must be a positive integer", ErrInvalidRequest)
	}
	return nil
}
