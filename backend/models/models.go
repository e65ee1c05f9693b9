package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HabitXP is the experience every newly created habit is worth.
const HabitXP = 50

// Goal defaults for manually created goals.
const (
	DefaultGoalXP       = 100
	DefaultGoalPriority = "medium"
)

// Goal shapes. A checklist goal was created from the plain name -> subtasks mapping, a
// suggested goal came back from the suggestion bridge.
const (
	ShapeChecklist = "checklist"
	ShapeSuggested = "suggested"
)

// DateJoined is stamped on every registered user.
const DateJoined = "2025-02-07"

type Habit struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Time     string `json:"time"`
	Priority string `json:"priority"`
	Reminder bool   `json:"reminder"`
	Streak   int    `json:"streak"`
	XP       int    `json:"xp"`
}

// HabitInput is the request body for creating or replacing a habit. Pointers tell an
// omitted field apart from its zero value.
type HabitInput struct {
	Title    *string `json:"title"`
	Time     *string `json:"time"`
	Priority *string `json:"priority"`
	Reminder *bool   `json:"reminder"`
	Streak   *int    `json:"streak"`
	XP       *int    `json:"xp"`
}

// StreakUpdate is the request body of the streak endpoint.
type StreakUpdate struct {
	Completed *bool `json:"completed"`
}

type Subtask struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON accepts either a subtask object or a bare title string.
func (s *Subtask) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*s = Subtask{Title: title}
		return nil
	}
	type plain Subtask
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Subtask(p)
	return nil
}

type Milestone struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	XP        int       `json:"xp"`
	Subtasks  []Subtask `json:"subtasks"`
}

// Milestones is the list form of a goal's milestones. It also decodes the mapping form
// {"milestone name": ["subtask", ...]}, keeping the key order of the document.
type Milestones []Milestone

func (m *Milestones) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	switch data[0] {
	case '[':
		var list []Milestone
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*m = list
		return nil
	case '{':
		list, err := decodeMilestoneMap(data)
		if err != nil {
			return err
		}
		*m = list
		return nil
	default:
		return fmt.Errorf("milestones: expected object or array, got %q", data[0])
	}
}

func decodeMilestoneMap(data []byte) (Milestones, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	list := Milestones{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("milestones: unexpected key %v", tok)
		}
		var names []string
		if err := dec.Decode(&names); err != nil {
			return nil, fmt.Errorf("milestones: %q: %w", name, err)
		}
		subtasks := make([]Subtask, 0, len(names))
		for _, n := range names {
			subtasks = append(subtasks, Subtask{Title: n})
		}
		list = append(list, Milestone{Title: name, Subtasks: subtasks})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}

type Goal struct {
	ID         int        `json:"id"`
	Shape      string     `json:"shape,omitempty"`
	Title      string     `json:"title"`
	Deadline   string     `json:"deadline"`
	Priority   string     `json:"priority"`
	Progress   int        `json:"progress"`
	XP         int        `json:"xp"`
	Milestones Milestones `json:"milestones"`
	// Extra holds keys the goal document carries beyond the fields above. They survive a
	// load and save unchanged.
	Extra map[string]any `json:"-"`
}

var goalKeys = map[string]bool{
	"id": true, "shape": true, "title": true, "deadline": true,
	"priority": true, "progress": true, "xp": true, "milestones": true,
}

func (g Goal) MarshalJSON() ([]byte, error) {
	type plain Goal
	data, err := json.Marshal(plain(g))
	if err != nil {
		return nil, err
	}
	extra := make(map[string]any, len(g.Extra))
	for k, v := range g.Extra {
		if !goalKeys[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return data, nil
	}
	tail, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}
	// Splice {"k":v,...} into the closing brace of the known fields.
	out := append(data[:len(data)-1:len(data)-1], ',')
	return append(out, tail[1:]...), nil
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	type plain Goal
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	p.Extra = nil
	for k, raw := range fields {
		if goalKeys[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[k] = v
	}
	*g = Goal(p)
	return nil
}

// Normalize numbers milestones and subtasks that carry no id and spreads the goal's xp
// over milestones that carry none.
func (g *Goal) Normalize() {
	if g.Milestones == nil {
		g.Milestones = Milestones{}
	}
	share := 0
	if n := len(g.Milestones); n > 0 {
		share = g.XP / n
	}
	for i := range g.Milestones {
		ms := &g.Milestones[i]
		if ms.ID == 0 {
			ms.ID = i + 1
		}
		if ms.XP == 0 {
			ms.XP = share
		}
		if ms.Subtasks == nil {
			ms.Subtasks = []Subtask{}
		}
		for j := range ms.Subtasks {
			if ms.Subtasks[j].ID == 0 {
				ms.Subtasks[j].ID = j + 1
			}
		}
	}
}

// GoalInput is the request body of the manual goal endpoint.
type GoalInput struct {
	Title      *string    `json:"title"`
	Deadline   *string    `json:"deadline"`
	Milestones Milestones `json:"milestones"`
	XP         *int       `json:"xp"`
	Priority   *string    `json:"priority"`
	Progress   *int       `json:"progress"`
}

// MilestoneUpdate is the request body of the milestone toggle endpoint.
type MilestoneUpdate struct {
	Completed *bool `json:"completed"`
}

type Preferences struct {
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
}

// User is stored keyed by email. The password is kept in plaintext.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password,omitempty"`
	Avatar      string      `json:"avatar"`
	DateJoined  string      `json:"dateJoined"`
	Preferences Preferences `json:"preferences"`
}

// Public returns a copy of the user without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

type SignupRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Avatar   *string `json:"avatar"`
}

type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type PromptRequest struct {
	Prompt *string `json:"prompt"`
}
