// Package suggest turns a free-text prompt into a structured goal by way of the
// generative-text service.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/llm"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/queue"
)

// DefaultTimeout bounds a single call to the generative-text service.
const DefaultTimeout = 60 * time.Second

var errMissingSuggestion = errors.New("missing key 'suggestion'")

// GoalAppender stores a goal and returns the stored copy.
type GoalAppender interface {
	Append(ctx context.Context, goal models.Goal) (models.Goal, error)
}

type Service struct {
	client   llm.Client
	goals    GoalAppender
	timeout  time.Duration
	notifier queue.Notifier
	logger   *slog.Logger
}

// Options configure a Service. Zero values select the defaults.
type Options struct {
	Timeout  time.Duration
	Notifier queue.Notifier
	Logger   *slog.Logger
}

func NewService(client llm.Client, goals GoalAppender, opts Options) *Service {
	s := &Service{
		client:   client,
		goals:    goals,
		timeout:  opts.Timeout,
		notifier: opts.Notifier,
		logger:   opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.notifier == nil {
		s.notifier = queue.NopNotifier{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Suggest sends prompt to the model wrapped in the instruction template, stores the
// suggested goal and returns the whole envelope the model produced. The "suggestion"
// entry of the returned envelope is the goal as stored, id included.
func (s *Service) Suggest(ctx context.Context, prompt string) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.client.Generate(callCtx, composePrompt(prompt))
	if err != nil {
		s.logger.ErrorContext(ctx, "suggestion_generate_failed", "err", err.Error(), "duration", time.Since(start))
		return nil, apperr.Upstream(err)
	}
	s.logger.DebugContext(ctx, "suggestion_generated", "chars", len(text), "duration", time.Since(start))

	envelope, err := extractEnvelope(text)
	if err != nil {
		return nil, apperr.UpstreamParse(err)
	}
	raw, ok := envelope["suggestion"]
	if !ok {
		return nil, apperr.UpstreamParse(errMissingSuggestion)
	}
	goal, err := toGoal(raw)
	if err != nil {
		return nil, apperr.UpstreamParse(err)
	}

	stored, err := s.goals.Append(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("store suggestion: %w", err)
	}
	envelope["suggestion"] = stored

	s.notifier.Notify(ctx, queue.NewEvent(queue.GoalSuggested, stored))
	return envelope, nil
}

func toGoal(raw any) (models.Goal, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return models.Goal{}, fmt.Errorf("suggestion: expected an object, got %T", raw)
	}
	data, err := json.Marshal(loosen(fields))
	if err != nil {
		return models.Goal{}, err
	}
	var goal models.Goal
	if err := json.Unmarshal(data, &goal); err != nil {
		return models.Goal{}, fmt.Errorf("suggestion: %w", err)
	}
	goal.ID = 0
	goal.Shape = models.ShapeSuggested
	return goal, nil
}
