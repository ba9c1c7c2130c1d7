package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"itinerary-api/internal/firestore"
	"itinerary-api/internal/http/handlers"
	"itinerary-api/internal/http/httpapi"
	"itinerary-api/internal/infra"
	"itinerary-api/internal/infra/google"
	"itinerary-api/internal/jobs"
	"itinerary-api/internal/providers/content"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	account, err := google.ParseServiceAccount([]byte(cfg.ServiceAccountJSON))
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid service account")
	}
	tokens := google.NewTokenSource(account, google.TokenSourceOptions{TokenURL: cfg.OAuthTokenURL})

	store, err := firestore.NewClient(account.ProjectID, firestore.ClientOptions{BaseURL: cfg.FirestoreBaseURL})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure document store")
	}

	var provider content.Provider
	switch cfg.ContentProvider {
	case "gemini":
		provider, err = content.NewGemini(content.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure gemini provider")
		}
	default:
		provider = content.NewStatic(cfg.PlaceholderDelay)
	}
	logger.Info().Str("provider", cfg.ContentProvider).Msg("content provider configured")

	metrics := infra.NewMetrics()

	manager, err := jobs.NewManager(jobs.ManagerOptions{
		Store:      store,
		Tokens:     tokens,
		Content:    provider,
		Collection: cfg.FirestoreCollection,
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure job manager")
	}

	app := handlers.NewApp(manager, logger)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		Metrics:         metrics,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Detached continuations must outlive their requests; drain them before
	// the process goes away or in-flight jobs stay processing forever.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.DrainTimeout)
	defer cancelDrain()
	if err := manager.Wait(drainCtx); err != nil {
		logger.Error().Err(err).Msg("job drain timed out")
	}

	logger.Info().Msg("server stopped")
}
