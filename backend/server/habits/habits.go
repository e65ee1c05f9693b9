// Package habits implements the habit operations over the habits store.
package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/queue"
	"github.com/jghoshh/streakly/backend/storage/persistent"
)

// sequenceName keys the habit ids in the id sequence.
const sequenceName = "habits"

const notFoundDetail = "Habit not found"

// Service performs load -> mutate -> save cycles on the habits document.
type Service struct {
	store    storage.Collection[[]models.Habit]
	ids      storage.IDSource
	notifier queue.Notifier
}

// NewService wires the habit operations to a store and an id source. A nil notifier
// drops activity events.
func NewService(store storage.Collection[[]models.Habit], ids storage.IDSource, notifier queue.Notifier) *Service {
	if notifier == nil {
		notifier = queue.NopNotifier{}
	}
	return &Service{store: store, ids: ids, notifier: notifier}
}

// List returns every habit verbatim.
func (s *Service) List(ctx context.Context) ([]models.Habit, error) {
	return s.store.Load(ctx)
}

// Create appends a new habit built from in.
//
// It accepts two arguments:
// - ctx: The request context.
// - in: The habit fields. Title, time and priority are required.
//
// The new habit gets the next id from the habits sequence and an xp of 50, whatever the
// input says. It returns the stored habit or an error.
func (s *Service) Create(ctx context.Context, in models.HabitInput) (models.Habit, error) {
	if err := validate(in); err != nil {
		return models.Habit{}, err
	}

	var created models.Habit
	err := s.store.Update(ctx, func(habits *[]models.Habit) error {
		id, err := s.ids.Next(ctx, sequenceName, maxID(*habits))
		if err != nil {
			return err
		}
		created = models.Habit{ID: id}
		apply(&created, in)
		created.XP = models.HabitXP
		*habits = append(*habits, created)
		return nil
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("create habit: %w", err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.HabitCreated, created))
	return created, nil
}

// Update overwrites the habit with the given id from in. Reminder and streak fall back to
// their defaults when omitted; xp is only replaced when the input carries one.
func (s *Service) Update(ctx context.Context, id int, in models.HabitInput) (models.Habit, error) {
	if err := validate(in); err != nil {
		return models.Habit{}, err
	}

	var updated models.Habit
	err := s.store.Update(ctx, func(habits *[]models.Habit) error {
		h := find(*habits, id)
		if h == nil {
			return apperr.NotFound(notFoundDetail)
		}
		apply(h, in)
		if in.XP != nil {
			h.XP = *in.XP
		}
		updated = *h
		return nil
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("update habit %d: %w", id, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.HabitUpdated, updated))
	return updated, nil
}

// AdjustStreak moves the streak of the habit one step: up when completed, otherwise down
// but never below zero.
func (s *Service) AdjustStreak(ctx context.Context, id int, completed bool) (models.Habit, error) {
	var updated models.Habit
	err := s.store.Update(ctx, func(habits *[]models.Habit) error {
		h := find(*habits, id)
		if h == nil {
			return apperr.NotFound(notFoundDetail)
		}
		if completed {
			h.Streak++
		} else if h.Streak > 0 {
			h.Streak--
		} else {
			h.Streak = 0
		}
		updated = *h
		return nil
	})
	if err != nil {
		return models.Habit{}, fmt.Errorf("adjust streak of habit %d: %w", id, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.HabitStreakAdjusted, updated))
	return updated, nil
}

// Delete removes the habit with the given id.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Update(ctx, func(habits *[]models.Habit) error {
		kept := make([]models.Habit, 0, len(*habits))
		for _, h := range *habits {
			if h.ID != id {
				kept = append(kept, h)
			}
		}
		if len(kept) == len(*habits) {
			return apperr.NotFound(notFoundDetail)
		}
		*habits = kept
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete habit %d: %w", id, err)
	}

	s.notifier.Notify(ctx, queue.NewEvent(queue.HabitDeleted, map[string]int{"id": id}))
	return nil
}

func validate(in models.HabitInput) error {
	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.Time == nil {
		missing = append(missing, "time")
	}
	if in.Priority == nil {
		missing = append(missing, "priority")
	}
	if len(missing) > 0 {
		return apperr.InvalidInput("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func apply(h *models.Habit, in models.HabitInput) {
	h.Title = *in.Title
	h.Time = *in.Time
	h.Priority = *in.Priority
	h.Reminder = false
	if in.Reminder != nil {
		h.Reminder = *in.Reminder
	}
	h.Streak = 0
	if in.Streak != nil {
		h.Streak = *in.Streak
	}
}

func find(habits []models.Habit, id int) *models.Habit {
	for i := range habits {
		if habits[i].ID == id {
			return &habits[i]
		}
	}
	return nil
}

func maxID(habits []models.Habit) int {
	highest := 0
	for _, h := range habits {
		if h.ID > highest {
			highest = h.ID
		}
	}
	return highest
}
