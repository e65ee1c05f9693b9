// Package goals implements the goal operations over the goals store.
package goals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/queue"
	"github.com/jghoshh/streakly/backend/storage/persistent"
)

const (
	sequenceName   = "goals"
	notFoundDetail = "Goal not found"
)

type Service struct {
	store    storage.Collection[[]models.Goal]
	ids      storage.IDSource
	notifier queue.Notifier
	logger   *slog.Logger
}

func NewService(store storage.Collection[[]models.Goal], ids storage.IDSource, notifier queue.Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = queue.NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ids: ids, notifier: notifier, logger: logger}
}

// List returns every goal. Goals written before ids were assigned get one here, and the
// milestones of every goal are returned in list form.
func (s *Service) List(ctx context.Context) ([]models.Goal, error) {
	var out []models.Goal
	err := s.store.Update(ctx, func(goals *[]models.Goal) error {
		changed, err := s.backfillIDs(ctx, *goals)
		if err != nil {
			return err
		}
		for i := range *goals {
			(*goals)[i].Normalize()
		}
		out = append([]models.Goal{}, (*goals)...)
		if !changed {
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	if len(out) == 0 {
		s.logger.WarnContext(ctx, "no goals found", "store", "goals")
	}
	return out, nil
}

// Create appends a manually defined goal. Milestones may be given as a mapping from
// milestone name to subtask names.
func (s *Service) Create(ctx context.Context, in models.GoalInput) (models.Goal, error) {
	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.Deadline == nil {
		missing = append(missing, "deadline")
	}
	if in.Milestones == nil {
		missing = append(missing, "milestones")
	}
	if len(missing) > 0 {
		return models.Goal{}, apperr.InvalidInput("missing required field(s): %s", strings.Join(missing, ", "))
	}

	goal := models.Goal{
		Shape:      models.ShapeChecklist,
		Title:      *in.Title,
		Deadline:   *in.Deadline,
		Priority:   models.DefaultGoalPriority,
		XP:         models.DefaultGoalXP,
		Milestones: in.Milestones,
	}
	if in.Priority != nil {
		goal.Priority = *in.Priority
	}
	if in.XP != nil {
		goal.XP = *in.XP
	}
	if in.Progress != nil {
		goal.Progress = *in.Progress
	}

	created, err := s.Append(ctx, goal)
	if err != nil {
		return models.Goal{}, err
	}
	s.notifier.Notify(ctx, queue.NewEvent(queue.GoalCreated, created))
	return created, nil
}

// Append stores goal with a fresh id and returns the stored copy.
func (s *Service) Append(ctx context.Context, goal models.Goal) (models.Goal, error) {
	err := s.store.Update(ctx, func(goals *[]models.Goal) error {
		if _, err := s.backfillIDs(ctx, *goals); err != nil {
			return err
		}
		id, err := s.ids.Next(ctx, sequenceName, maxID(*goals))
		if err != nil {
			return err
		}
		goal.ID = id
		goal.Normalize()
		*goals = append(*goals, goal)
		return nil
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("append goal: %w", err)
	}
	return goal, nil
}

// SetMilestone marks a milestone as completed or not and recomputes the goal's progress
// as the percentage of completed milestones.
func (s *Service) SetMilestone(ctx context.Context, goalID, milestoneID int, completed bool) (models.Goal, error) {
	var updated models.Goal
	err := s.store.Update(ctx, func(goals *[]models.Goal) error {
		if _, err := s.backfillIDs(ctx, *goals); err != nil {
			return err
		}
		g := find(*goals, goalID)
		if g == nil {
			return apperr.NotFound(notFoundDetail)
		}
		g.Normalize()
		var ms *models.Milestone
		for i := range g.Milestones {
			if g.Milestones[i].ID == milestoneID {
				ms = &g.Milestones[i]
				break
			}
		}
		if ms == nil {
			return apperr.NotFound("Milestone not found")
		}
		ms.Completed = completed
		for i := range ms.Subtasks {
			ms.Subtasks[i].Completed = completed
		}
		g.Progress = progress(g.Milestones)
		updated = *g
		return nil
	})
	if err != nil {
		return models.Goal{}, fmt.Errorf("set milestone %d of goal %d: %w", milestoneID, goalID, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.GoalUpdated, updated))
	return updated, nil
}

// Delete removes the goal with the given id. Goals stored without an id are numbered
// first, so they can only be removed by the id they are listed under.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Update(ctx, func(goals *[]models.Goal) error {
		if _, err := s.backfillIDs(ctx, *goals); err != nil {
			return err
		}
		kept := make([]models.Goal, 0, len(*goals))
		for _, g := range *goals {
			if g.ID != id {
				kept = append(kept, g)
			}
		}
		if len(kept) == len(*goals) {
			return apperr.NotFound(notFoundDetail)
		}
		*goals = kept
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.GoalDeleted, map[string]int{"id": id}))
	return nil
}

// backfillIDs gives every goal without an id the next one from the sequence.
func (s *Service) backfillIDs(ctx context.Context, goals []models.Goal) (bool, error) {
	changed := false
	for i := range goals {
		if goals[i].ID != 0 {
			continue
		}
		id, err := s.ids.Next(ctx, sequenceName, maxID(goals))
		if err != nil {
			return changed, err
		}
		goals[i].ID = id
		if goals[i].Shape == "" {
			goals[i].Shape = models.ShapeSuggested
		}
		changed = true
	}
	return changed, nil
}

func progress(milestones models.Milestones) int {
	if len(milestones) == 0 {
		return 0
	}
	done := 0
	for _, ms := range milestones {
		if ms.Completed {
			done++
		}
	}
	return done * 100 / len(milestones)
}

func find(goals []models.Goal, id int) *models.Goal {
	for i := range goals {
		if goals[i].ID == id {
			return &goals[i]
		}
	}
	return nil
}

func maxID(goals []models.Goal) int {
	highest := 0
	for _, g := range goals {
		if g.ID > highest {
			highest = g.ID
		}
	}
	return highest
}
