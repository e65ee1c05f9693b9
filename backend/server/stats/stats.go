// Package stats summarizes progress across habits and goals.
package stats

import (
	"context"
	"fmt"

	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/storage/persistent"
)

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 1000

type Summary struct {
	TotalXP        int `json:"totalXp"`
	Level          int `json:"level"`
	LongestStreak  int `json:"longestStreak"`
	Habits         int `json:"habits"`
	Goals          int `json:"goals"`
	CompletedGoals int `json:"completedGoals"`
}

type Service struct {
	habits storage.Collection[[]models.Habit]
	goals  storage.Collection[[]models.Goal]
}

func NewService(habits storage.Collection[[]models.Habit], goals storage.Collection[[]models.Goal]) *Service {
	return &Service{habits: habits, goals: goals}
}

// Summary adds up the xp of every habit and every fully completed goal.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	habits, err := s.habits.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load habits: %w", err)
	}
	goals, err := s.goals.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load goals: %w", err)
	}
	return summarize(habits, goals), nil
}

func summarize(habits []models.Habit, goals []models.Goal) Summary {
	sum := Summary{Habits: len(habits), Goals: len(goals)}
	for _, h := range habits {
		sum.TotalXP += h.XP
		if h.Streak > sum.LongestStreak {
			sum.LongestStreak = h.Streak
		}
	}
	for _, g := range goals {
		if completed(g) {
			sum.CompletedGoals++
			sum.TotalXP += g.XP
		}
	}
	sum.Level = sum.TotalXP/XPPerLevel + 1
	return sum
}

func completed(g models.Goal) bool {
	if g.Progress >= 100 {
		return true
	}
	if len(g.Milestones) == 0 {
		return false
	}
	for _, m := range g.Milestones {
		if !m.Completed {
			return false
		}
	}
	return true
}
