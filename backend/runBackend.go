package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jghoshh/streakly/backend/config"
	"github.com/jghoshh/streakly/backend/llm"
	"github.com/jghoshh/streakly/backend/queue"
	"github.com/jghoshh/streakly/backend/server"
	"github.com/jghoshh/streakly/backend/server/auth"
	"github.com/jghoshh/streakly/backend/server/goals"
	"github.com/jghoshh/streakly/backend/server/habits"
	"github.com/jghoshh/streakly/backend/server/stats"
	"github.com/jghoshh/streakly/backend/server/suggest"
	"github.com/jghoshh/streakly/backend/storage/persistent"
)

// Build wires the stores, the activity queue and the services into the HTTP handler. The
// returned cleanup releases the queue connection.
func Build(cfg config.Config, logger *slog.Logger) (http.Handler, func(), error) {
	// Initialize the flat-file stores, creating missing files
	st, err := storage.NewStorage(storage.Config{
		DataDir:    cfg.DataDir,
		HabitsFile: cfg.HabitsFile,
		GoalsFile:  cfg.GoalsFile,
		UsersFile:  cfg.UsersFile,
		Strict:     cfg.StrictStores,
	}, storage.DocumentOptions{Logger: logger})
	if err != nil {
		return nil, nil, err
	}

	// Activity events go to RabbitMQ only when a broker is configured
	var notifier queue.Notifier = queue.NopNotifier{}
	cleanup := func() {}
	if cfg.RabbitMQURL != "" {
		activityQueue, err := queue.BuildActivityQueue(cfg.RabbitMQURL, cfg.NumProducers)
		if err != nil {
			return nil, nil, fmt.Errorf("error building activity queue: %w", err)
		}
		notifier = queue.NewQueueNotifier(activityQueue, logger)
		cleanup = func() {
			if err := activityQueue.Close(); err != nil {
				logger.Warn("activity_queue_close_failed", "err", err.Error())
			}
		}
		logger.Info("activity_queue_ready", "queue", queue.ActivityQueueName, "producers", len(activityQueue.Producers))
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key_missing", "hint", "suggestions will fail until GEMINI_API_KEY is set")
	}
	model := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)

	goalService := goals.NewService(st.Goals, st.Sequences, notifier, logger)
	router := server.NewRouter(server.Deps{
		Habits: habits.NewService(st.Habits, st.Sequences, notifier),
		Goals:  goalService,
		Suggest: suggest.NewService(model, goalService, suggest.Options{
			Timeout:  cfg.LLMTimeout,
			Notifier: notifier,
			Logger:   logger,
		}),
		Auth:   auth.NewService(st.Users, st.Sequences, notifier),
		Stats:  stats.NewService(st.Habits, st.Goals),
		Logger: logger,
	})
	return router, cleanup, nil
}

// RunBackend is the main function that sets up and runs the backend server. It returns
// once SIGINT or SIGTERM has drained the server.
func RunBackend(cfg config.Config, logger *slog.Logger) error {
	// Setting up the signal interrupt handler to gracefully shutdown our server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("backend_starting",
		"server_url", cfg.ServerURL,
		"data_dir", cfg.DataDir,
		"model", cfg.GeminiModel,
		"strict_stores", cfg.StrictStores,
	)
	return server.Start(ctx, cfg.ServerURL, handler, logger)
}
