package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jghoshh/streakly/backend/models"
)

// Collection is a whole-document store. Load returns the full snapshot and Update runs a
// serialized read-modify-write on it.
type Collection[T any] interface {
	Load(ctx context.Context) (T, error)
	Update(ctx context.Context, fn func(doc *T) error) error
}

// IDSource issues ids for a named collection.
type IDSource interface {
	Next(ctx context.Context, name string, floor int) (int, error)
}

// Config names the files backing each store.
type Config struct {
	DataDir       string
	HabitsFile    string
	GoalsFile     string
	UsersFile     string
	SequencesFile string
	Strict        bool
}

// Storage bundles the three entity stores and the id sequence.
type Storage struct {
	Habits    *Document[[]models.Habit]
	Goals     *Document[[]models.Goal]
	Users     *Document[map[string]models.User]
	Sequences *Sequence
}

// NewStorage opens (and creates when missing) every store file under cfg.DataDir.
func NewStorage(cfg Config, opts DocumentOptions) (*Storage, error) {
	opts.Strict = opts.Strict || cfg.Strict
	resolve := func(name, fallback string) string {
		if name == "" {
			name = fallback
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(cfg.DataDir, name)
	}

	habits, err := NewDocument(resolve(cfg.HabitsFile, "habits.json"), func() []models.Habit { return []models.Habit{} }, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize habits store: %w", err)
	}
	goals, err := NewDocument(resolve(cfg.GoalsFile, "goals.json"), func() []models.Goal { return []models.Goal{} }, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize goals store: %w", err)
	}
	users, err := NewDocument(resolve(cfg.UsersFile, "users.json"), func() map[string]models.User { return map[string]models.User{} }, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize users store: %w", err)
	}
	seq, err := NewSequence(resolve(cfg.SequencesFile, "sequences.json"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize id sequences: %w", err)
	}

	return &Storage{
		Habits:    habits,
		Goals:     goals,
		Users:     users,
		Sequences: seq,
	}, nil
}
