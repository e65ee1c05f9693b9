package stats

import (
	"context"
	"testing"

	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/storage/persistent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	habits := []models.Habit{
		{ID: 1, XP: 50, Streak: 3},
		{ID: 2, XP: 50, Streak: 12},
	}
	goals := []models.Goal{
		{ID: 1, XP: 1200, Progress: 100},
		{ID: 2, XP: 500, Progress: 50},
		{ID: 3, XP: 300, Milestones: models.Milestones{{ID: 1, Completed: true}, {ID: 2, Completed: true}}},
		{ID: 4, XP: 100},
	}

	got := summarize(habits, goals)
	assert.Equal(t, Summary{
		TotalXP:        1600,
		Level:          2,
		LongestStreak:  12,
		Habits:         2,
		Goals:          4,
		CompletedGoals: 2,
	}, got)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{Level: 1}, summarize(nil, nil))
}

func TestSummaryReadsStores(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewStorage(storage.Config{DataDir: t.TempDir()}, storage.DocumentOptions{})
	require.NoError(t, err)

	require.NoError(t, st.Habits.Save(ctx, []models.Habit{{ID: 1, Title: "Read", XP: 50, Streak: 2}}))
	require.NoError(t, st.Goals.Save(ctx, []models.Goal{{ID: 1, Title: "Run", XP: 950, Progress: 100}}))

	got, err := NewService(st.Habits, st.Goals).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, got.TotalXP)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 2, got.LongestStreak)
	assert.Equal(t, 1, got.CompletedGoals)
}
