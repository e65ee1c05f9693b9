// Package server exposes the habit, goal, suggestion and account operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jghoshh/streakly/backend/server/auth"
	"github.com/jghoshh/streakly/backend/server/goals"
	"github.com/jghoshh/streakly/backend/server/habits"
	"github.com/jghoshh/streakly/backend/server/stats"
	"github.com/jghoshh/streakly/backend/server/suggest"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the routes dispatch to.
type Deps struct {
	Habits  *habits.Service
	Goals   *goals.Service
	Suggest *suggest.Service
	Auth    *auth.Service
	Stats   *stats.Service
	Logger  *slog.Logger
	// AccessLog receives one line per request. Defaults to os.Stdout.
	AccessLog io.Writer
}

// NewRouter builds the full handler: routes wrapped in CORS, access logging, panic
// recovery and request ids, outermost last.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.AccessLog == nil {
		deps.AccessLog = os.Stdout
	}
	h := &handler{deps: deps, logger: deps.Logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	r.HandleFunc("/habits", h.listHabits).Methods(http.MethodGet)
	r.HandleFunc("/habits", h.createHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/{id}", h.updateHabit).Methods(http.MethodPut)
	r.HandleFunc("/habits/{id}/streak", h.adjustStreak).Methods(http.MethodPatch)
	r.HandleFunc("/habits/{id}", h.deleteHabit).Methods(http.MethodDelete)

	r.HandleFunc("/goals", h.listGoals).Methods(http.MethodGet)
	r.HandleFunc("/goals", h.createGoal).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id}/milestones/{milestoneId}", h.setMilestone).Methods(http.MethodPatch)
	r.HandleFunc("/goals/{id}", h.deleteGoal).Methods(http.MethodDelete)

	r.HandleFunc("/recommend_habits", h.recommend).Methods(http.MethodPost)

	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)

	r.HandleFunc("/stats", h.stats).Methods(http.MethodGet)

	corsRouter := openCORS(r)

	loggingRouter := handlers.LoggingHandler(deps.AccessLog, corsRouter)

	return requestIDMiddleware(recoveryMiddleware(deps.Logger, loggingRouter))
}

// Start listens on the host of serverURL and serves handler until ctx is cancelled, then
// drains in-flight requests.
func Start(ctx context.Context, serverURL string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	// Parsing the server url
	u, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q has no host", serverURL)
	}

	server := &http.Server{
		Handler:           handler,
		Addr:              u.Host,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Suggestions wait on the generative-text service.
		WriteTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
