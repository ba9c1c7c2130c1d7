// Package jobs owns the lifecycle of itinerary generation jobs: the
// processing → completed|failed state machine, the durable record writes
// backing each transition, and the registry of in-flight background
// continuations the process drains before exit.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"itinerary-api/internal/domain"
	"itinerary-api/internal/firestore"
	"itinerary-api/internal/infra"
	"itinerary-api/internal/providers/content"
)

// TokenSource authorizes document store access for one operation sequence.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DocumentStore is the narrow slice of the store client the manager needs.
type DocumentStore interface {
	Put(ctx context.Context, token, collection, docID string, fields map[string]firestore.Value) (map[string]firestore.Value, error)
	Get(ctx context.Context, token, collection, docID string) (map[string]firestore.Value, error)
}

// ManagerOptions wires a Manager's collaborators.
type ManagerOptions struct {
	Store      DocumentStore
	Tokens     TokenSource
	Content    content.Provider
	Collection string
	Logger     zerolog.Logger
	Metrics    *infra.Metrics
	Now        func() time.Time
	NewID      func() string
}

// Manager runs the job state machine. Each job's record is written only by
// the request that created it and its single continuation, so there is no
// concurrent-writer contention on a document.
type Manager struct {
	store      DocumentStore
	tokens     TokenSource
	content    content.Provider
	collection string
	logger     zerolog.Logger
	metrics    *infra.Metrics
	now        func() time.Time
	newID      func() string

	pending drainGroup
}

// NewManager validates the wiring and builds a Manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("jobs: document store is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("jobs: token source is required")
	}
	if opts.Content == nil {
		return nil, errors.New("jobs: content provider is required")
	}
	collection := opts.Collection
	if collection == "" {
		collection = "itineraries"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Manager{
		store:      opts.Store,
		tokens:     opts.Tokens,
		content:    opts.Content,
		collection: collection,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		now:        now,
		newID:      newID,
	}, nil
}

// Create validates the request, writes the initial processing record and
// detaches the generation continuation. The returned id is usable for
// polling immediately; the continuation never reports back to this caller.
// Validation failures leave no document behind.
func (m *Manager) Create(ctx context.Context, destination string, durationDays int) (string, error) {
	if err := domain.ValidateItineraryRequest(destination, durationDays); err != nil {
		return "", err
	}

	token, err := m.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("jobs: acquire token: %w", err)
	}

	job := domain.NewJob(m.newID(), destination, durationDays, m.now())
	if _, err := m.store.Put(ctx, token, m.collection, job.ID, encodeJob(job)); err != nil {
		return "", fmt.Errorf("jobs: write initial record: %w", err)
	}
	if m.metrics != nil {
		m.metrics.JobsCreatedTotal.Inc()
	}
	m.logger.Info().Str("job_id", job.ID).Str("destination", destination).Int("duration_days", durationDays).Msg("job accepted")

	// The token acquired for this request sequence authorizes the terminal
	// write too; its validity comfortably outlives any generation call.
	m.pending.Go(func() {
		m.complete(token, job)
	})

	return job.ID, nil
}

// complete runs detached from the originating request. Every outcome,
// including content-provider failure, ends in exactly one terminal write
// that resends the immutable fields alongside the changed ones.
func (m *Manager) complete(token string, job *domain.Job) {
	ctx := context.Background()

	start := m.now()
	itinerary, genErr := m.content.Itinerary(ctx, job.Destination, job.DurationDays)
	if m.metrics != nil {
		m.metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
	}

	completedAt := m.now()
	terminal := *job
	terminal.CompletedAt = &completedAt
	if genErr != nil {
		msg := genErr.Error()
		terminal.Status = domain.JobStatusFailed
		terminal.Error = &msg
		terminal.Itinerary = []domain.ItineraryDay{}
		m.logger.Error().Err(genErr).Str("job_id", job.ID).Msg("content generation failed")
	} else {
		terminal.Status = domain.JobStatusCompleted
		terminal.Itinerary = itinerary
	}

	if _, err := m.store.Put(ctx, token, m.collection, job.ID, encodeJob(&terminal)); err != nil {
		// The job stays in processing; there is no listener to notify and
		// no retry policy, so the failure is only observable here.
		m.logger.Error().Err(err).Str("job_id", job.ID).Str("status", string(terminal.Status)).Msg("terminal write failed")
		return
	}

	if m.metrics != nil {
		switch terminal.Status {
		case domain.JobStatusCompleted:
			m.metrics.JobsCompletedTotal.Inc()
		case domain.JobStatusFailed:
			m.metrics.JobsFailedTotal.Inc()
		}
	}
	m.logger.Info().Str("job_id", job.ID).Str("status", string(terminal.Status)).Msg("job finished")
}

// Get fetches and decodes the current record for a job. An unknown id is
// reported as domain.ErrNotFound, distinct from store failures.
func (m *Manager) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("jobs: acquire token: %w", err)
	}

	fields, err := m.store.Get(ctx, token, m.collection, jobID)
	if err != nil {
		if errors.Is(err, firestore.ErrNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("jobs: read record: %w", err)
	}
	return decodeJob(jobID, fields)
}

// Wait blocks until every detached continuation has finished or the context
// expires. The process must call this before exit or in-flight jobs are
// silently abandoned mid-processing.
func (m *Manager) Wait(ctx context.Context) error {
	return m.pending.Wait(ctx)
}
