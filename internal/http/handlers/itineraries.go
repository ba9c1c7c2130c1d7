package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"itinerary-api/internal/domain"
)

type itineraryRequest struct {
	Destination  string `json:"destination"`
	DurationDays int    `json:"durationDays"`
}

type itineraryAccepted struct {
	JobID string `json:"jobId"`
}

// CreateItinerary accepts a generation request and answers 202 with the job
// id once the initial record is durably written. Generation itself happens
// after this response.
func (a *App) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var req itineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON input")
		return
	}

	jobID, err := a.Jobs.Create(r.Context(), req.Destination, req.DurationDays)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("job creation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create job")
		return
	}

	a.json(w, http.StatusAccepted, itineraryAccepted{JobID: jobID})
}

// MissingJobID answers polls that omit the id segment.
func (a *App) MissingJobID(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusBadRequest, "bad_request", "jobId is required")
}

// GetItinerary is the polling endpoint: it serves the decoded job record.
func (a *App) GetItinerary(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "jobId is required")
		return
	}

	job, err := a.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusNotFound, map[string]string{"error": "job not found"})
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	a.json(w, http.StatusOK, job)
}
