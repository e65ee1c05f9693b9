package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jghoshh/streakly/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHabitDoc(t *testing.T, path string, strict bool) *Document[[]models.Habit] {
	t.Helper()
	doc, err := NewDocument(path, func() []models.Habit { return []models.Habit{} }, DocumentOptions{Strict: strict})
	require.NoError(t, err)
	return doc
}

func TestNewDocumentCreatesEmptyContainer(t *testing.T) {
	dir := t.TempDir()

	habits := newHabitDoc(t, filepath.Join(dir, "habits.json"), false)
	users, err := NewDocument(filepath.Join(dir, "users.json"), func() map[string]models.User { return map[string]models.User{} }, DocumentOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(habits.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))

	data, err = os.ReadFile(users.Path())
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(string(data)))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)

	in := []models.Habit{
		{ID: 1, Title: "Read", Time: "7am", Priority: "high", XP: 50},
		{ID: 2, Title: "Run", Time: "6pm", Priority: "low", Reminder: true, Streak: 4, XP: 50},
	}
	require.NoError(t, doc.Save(ctx, in))

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	doc, err := NewDocument(filepath.Join(t.TempDir(), "users.json"), func() map[string]models.User { return map[string]models.User{} }, DocumentOptions{})
	require.NoError(t, err)

	in := map[string]models.User{
		"a@example.com": {
			ID: "1", Username: "a", Email: "a@example.com", Password: "pw", Avatar: "cat",
			DateJoined: models.DateJoined, Preferences: models.Preferences{Notifications: true, Theme: "dark"},
		},
	}
	require.NoError(t, doc.Save(ctx, in))

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)
	require.NoError(t, os.Remove(doc.Path()))

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestLoadNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)
	require.NoError(t, os.WriteFile(doc.Path(), []byte("null"), 0o644))

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestCorruptFileIsQuarantined(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := newHabitDoc(t, filepath.Join(dir, "habits.json"), false)
	require.NoError(t, os.WriteFile(doc.Path(), []byte(`[{"id": 1, "title": `), 0o644))

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	matches, err := filepath.Glob(filepath.Join(dir, "habits.json.corrupt-*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	kept, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, `[{"id": 1, "title": `, string(kept))
}

func TestCorruptFileStrictFailsAndKeepsFile(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), true)
	require.NoError(t, os.WriteFile(doc.Path(), []byte(`{"not": "a list"}`), 0o644))

	_, err := doc.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))

	err = doc.Update(ctx, func(habits *[]models.Habit) error {
		*habits = append(*habits, models.Habit{ID: 1})
		return nil
	})
	assert.ErrorIs(t, err, ErrCorrupt)

	data, err := os.ReadFile(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, `{"not": "a list"}`, string(data))
}

func TestUpdateNoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)
	require.NoError(t, os.WriteFile(doc.Path(), []byte(`[ ]`), 0o644))

	err := doc.Update(ctx, func(habits *[]models.Habit) error {
		return ErrNoChange
	})
	require.NoError(t, err)

	data, err := os.ReadFile(doc.Path())
	require.NoError(t, err)
	assert.Equal(t, "[ ]", string(data))
}

func TestUpdateErrorAborts(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)
	boom := errors.New("boom")

	err := doc.Update(ctx, func(habits *[]models.Habit) error {
		*habits = append(*habits, models.Habit{ID: 9})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	doc := newHabitDoc(t, filepath.Join(t.TempDir(), "habits.json"), false)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := doc.Update(ctx, func(habits *[]models.Habit) error {
				*habits = append(*habits, models.Habit{ID: id})
				return nil
			})
			assert.NoError(t, err)
		}(i + 1)
	}
	wg.Wait()

	out, err := doc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out, writers)
}

func TestSequenceIsMonotonic(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sequences.json")
	seq, err := NewSequence(path, DocumentOptions{})
	require.NoError(t, err)

	first, err := seq.Next(ctx, "habits", 0)
	require.NoError(t, err)
	second, err := seq.Next(ctx, "habits", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)

	// The collection shrank, the sequence does not.
	third, err := seq.Next(ctx, "habits", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, third)

	// Records that predate the sequence push it forward.
	goal, err := seq.Next(ctx, "goals", 7)
	require.NoError(t, err)
	assert.Equal(t, 8, goal)

	reopened, err := NewSequence(path, DocumentOptions{})
	require.NoError(t, err)
	next, err := reopened.Next(ctx, "habits", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
}

func TestNewStorageResolvesFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStorage(Config{DataDir: dir}, DocumentOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "habits.json"), st.Habits.Path())
	assert.Equal(t, filepath.Join(dir, "goals.json"), st.Goals.Path())
	assert.Equal(t, filepath.Join(dir, "users.json"), st.Users.Path())
	assert.FileExists(t, filepath.Join(dir, "sequences.json"))
}

func TestNewDocumentRejectsEmptyPath(t *testing.T) {
	_, err := NewDocument("  ", func() []models.Habit { return nil }, DocumentOptions{})
	assert.ErrorIs(t, err, ErrInvalidPath)
}
