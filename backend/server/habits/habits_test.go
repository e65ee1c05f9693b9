package habits

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/queue"
	"github.com/jghoshh/streakly/backend/storage/persistent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []queue.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev queue.Event) {
	r.events = append(r.events, ev)
}

func newTestService(t *testing.T) (*Service, *storage.Storage, *recordingNotifier) {
	t.Helper()
	st, err := storage.NewStorage(storage.Config{DataDir: t.TempDir()}, storage.DocumentOptions{})
	require.NoError(t, err)
	n := &recordingNotifier{}
	return NewService(st.Habits, st.Sequences, n), st, n
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func readInput() models.HabitInput {
	return models.HabitInput{Title: strPtr("Read"), Time: strPtr("7am"), Priority: strPtr("high")}
}

func TestCreateAssignsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newTestService(t)

	h, err := svc.Create(ctx, readInput())
	require.NoError(t, err)

	assert.Equal(t, models.Habit{ID: 1, Title: "Read", Time: "7am", Priority: "high", XP: 50}, h)
	require.Len(t, n.events, 1)
	assert.Equal(t, queue.HabitCreated, n.events[0].Type)
}

func TestCreateAlwaysForcesXP(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, xp := range []int{0, 1, 9999, -5} {
		in := readInput()
		in.XP = intPtr(xp)
		in.Streak = intPtr(3)
		h, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, models.HabitXP, h.XP)
		assert.Equal(t, 3, h.Streak)
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.HabitInput{Title: strPtr("Read")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Equal(t, "missing required field(s): time, priority", apperr.Detail(err))
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first, err := svc.Create(ctx, readInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, readInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, first.ID))

	third, err := svc.Create(ctx, readInput())
	require.NoError(t, err)
	fourth, err := svc.Create(ctx, readInput())
	require.NoError(t, err)

	ids := map[int]bool{}
	all, err := svc.List(ctx)
	require.NoError(t, err)
	for _, h := range all {
		assert.False(t, ids[h.ID], "duplicate id %d", h.ID)
		ids[h.ID] = true
	}
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 3, third.ID)
	assert.Equal(t, 4, fourth.ID)
}

func TestUpdateOverwritesFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	in := readInput()
	in.Streak = intPtr(5)
	in.Reminder = boolPtr(true)
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, models.HabitInput{
		Title: strPtr("Read more"), Time: strPtr("8am"), Priority: strPtr("low"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Habit{ID: created.ID, Title: "Read more", Time: "8am", Priority: "low", XP: 50}, updated)

	withXP := readInput()
	withXP.XP = intPtr(120)
	updated, err = svc.Update(ctx, created.ID, withXP)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.XP)
}

func TestUpdateMissingHabit(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 42, readInput())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Habit not found", apperr.Detail(err))
}

func TestAdjustStreakFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	in := readInput()
	in.Streak = intPtr(2)
	h, err := svc.Create(ctx, in)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		h, err = svc.AdjustStreak(ctx, h.ID, false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, h.Streak, 0)
	}
	assert.Equal(t, 0, h.Streak)

	h, err = svc.AdjustStreak(ctx, h.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Streak)
}

func TestAdjustStreakMissingHabit(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AdjustStreak(context.Background(), 7, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteMissingLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, st, n := newTestService(t)

	_, err := svc.Create(ctx, readInput())
	require.NoError(t, err)
	before, err := st.Habits.Load(ctx)
	require.NoError(t, err)

	err = svc.Delete(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	after, err := st.Habits.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, n.events, 1)
}

func TestListPersistsAcrossServices(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := storage.NewStorage(storage.Config{DataDir: dir}, storage.DocumentOptions{})
	require.NoError(t, err)
	_, err = NewService(st.Habits, st.Sequences, nil).Create(ctx, readInput())
	require.NoError(t, err)

	reopened, err := storage.NewStorage(storage.Config{DataDir: dir}, storage.DocumentOptions{})
	require.NoError(t, err)
	all, err := NewService(reopened.Habits, reopened.Sequences, nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, filepath.Join(dir, "habits.json"), reopened.Habits.Path())
}
