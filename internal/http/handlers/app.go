package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"itinerary-api/internal/domain"
)

// JobService is the slice of the lifecycle manager the HTTP layer needs.
type JobService interface {
	Create(ctx context.Context, destination string, durationDays int) (string, error)
	Get(ctx context.Context, jobID string) (*domain.Job, error)
}

// App bundles handler dependencies.
type App struct {
	Jobs   JobService
	Logger zerolog.Logger
}

func NewApp(jobs JobService, logger zerolog.Logger) *App {
	return &App{Jobs: jobs, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
