package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestonesMappingKeepsOrder(t *testing.T) {
	var g Goal
	err := json.Unmarshal([]byte(`{
		"title": "Marathon",
		"milestones": {"Zone 2": ["Run 5k"], "Base": ["Run 10k", "Rest"], "Taper": []}
	}`), &g)
	require.NoError(t, err)

	require.Len(t, g.Milestones, 3)
	assert.Equal(t, "Zone 2", g.Milestones[0].Title)
	assert.Equal(t, "Base", g.Milestones[1].Title)
	assert.Equal(t, "Taper", g.Milestones[2].Title)
	assert.Equal(t, []Subtask{{Title: "Run 10k"}, {Title: "Rest"}}, g.Milestones[1].Subtasks)
}

func TestMilestonesList(t *testing.T) {
	var m Milestones
	err := json.Unmarshal([]byte(`[{"id": 4, "title": "Tour", "completed": true, "xp": 30, "subtasks": ["Basics", {"id": 2, "title": "Types", "completed": true}]}]`), &m)
	require.NoError(t, err)

	assert.Equal(t, Milestones{{
		ID: 4, Title: "Tour", Completed: true, XP: 30,
		Subtasks: []Subtask{{Title: "Basics"}, {ID: 2, Title: "Types", Completed: true}},
	}}, m)
}

func TestMilestonesRejectsScalars(t *testing.T) {
	var m Milestones
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &m))
}

func TestMilestonesNull(t *testing.T) {
	var in GoalInput
	require.NoError(t, json.Unmarshal([]byte(`{"title": "x", "milestones": null}`), &in))
	assert.Nil(t, in.Milestones)
}

func TestNormalize(t *testing.T) {
	g := Goal{
		XP: 100,
		Milestones: Milestones{
			{Title: "A", Subtasks: []Subtask{{Title: "a1"}, {Title: "a2"}}},
			{ID: 7, Title: "B", XP: 10},
		},
	}
	g.Normalize()

	assert.Equal(t, Milestones{
		{ID: 1, Title: "A", XP: 50, Subtasks: []Subtask{{ID: 1, Title: "a1"}, {ID: 2, Title: "a2"}}},
		{ID: 7, Title: "B", XP: 10, Subtasks: []Subtask{}},
	}, g.Milestones)

	var empty Goal
	empty.Normalize()
	assert.NotNil(t, empty.Milestones)
}

func TestUserPublicDropsPassword(t *testing.T) {
	u := User{ID: "1", Email: "a@example.com", Password: "secret", Preferences: Preferences{Notifications: true, Theme: "dark"}}

	data, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"dateJoined"`)
	assert.Equal(t, "secret", u.Password)
}

func TestGoalKeepsUnknownKeys(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "title": "Swim", "category": "sport", "meta": {"source": "coach"}}`), &g))
	assert.Equal(t, 3, g.ID)
	assert.Equal(t, map[string]any{"category": "sport", "meta": map[string]any{"source": "coach"}}, g.Extra)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "sport", back["category"])
	assert.Equal(t, "Swim", back["title"])
	assert.EqualValues(t, 3, back["id"])
}

func TestGoalWithoutExtraMarshalsPlain(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "title": "Swim"}`), &g))
	assert.Nil(t, g.Extra)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Swim","deadline":"","priority":"","progress":0,"xp":0,"milestones":null}`, string(data))
}

func TestGoalExtraCannotShadowFields(t *testing.T) {
	g := Goal{ID: 2, Title: "Swim", Extra: map[string]any{"title": "other", "note": "x"}}
	data, err := json.Marshal(g)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Swim", back["title"])
	assert.Equal(t, "x", back["note"])
}
