package suggest

import (
	"math"
	"strconv"
	"strings"
)

var (
	goalInts      = []string{"id", "progress", "xp"}
	goalStrings   = []string{"title", "deadline", "priority"}
	milestoneInts = []string{"id", "xp"}
	subtaskInts   = []string{"id"}
)

// loosen rewrites the scalar fields of a model-produced goal into the types the goal
// record expects: fractional or quoted numbers become truncated integers, quoted booleans
// become booleans and numeric titles become strings. Values that cannot be read as the
// expected type are dropped so the field takes its zero value. Unrecognised keys pass
// through untouched.
func loosen(goal map[string]any) map[string]any {
	out := copyMap(goal)
	coerceInts(out, goalInts)
	coerceStrings(out, goalStrings)

	list, ok := out["milestones"].([]any)
	if !ok {
		return out
	}
	milestones := make([]any, len(list))
	for i, item := range list {
		ms, ok := item.(map[string]any)
		if !ok {
			milestones[i] = item
			continue
		}
		ms = copyMap(ms)
		coerceInts(ms, milestoneInts)
		coerceStrings(ms, []string{"title"})
		coerceBool(ms, "completed")
		if subs, ok := ms["subtasks"].([]any); ok {
			subtasks := make([]any, len(subs))
			for j, sub := range subs {
				st, ok := sub.(map[string]any)
				if !ok {
					subtasks[j] = sub
					continue
				}
				st = copyMap(st)
				coerceInts(st, subtaskInts)
				coerceStrings(st, []string{"title"})
				coerceBool(st, "completed")
				subtasks[j] = st
			}
			ms["subtasks"] = subtasks
		}
		milestones[i] = ms
	}
	out["milestones"] = milestones
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func coerceInts(m map[string]any, keys []string) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := asInt(v); ok {
			m[k] = n
		} else {
			delete(m, k)
		}
	}
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(math.Trunc(t)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return 0, false
		}
		return asInt(f)
	}
	return 0, false
}

func coerceStrings(m map[string]any, keys []string) {
	for _, k := range keys {
		switch t := m[k].(type) {
		case nil, string:
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			m[k] = strconv.FormatBool(t)
		default:
			delete(m, k)
		}
	}
}

func coerceBool(m map[string]any, key string) {
	switch t := m[key].(type) {
	case nil, bool:
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			delete(m, key)
			return
		}
		m[key] = b
	case float64:
		m[key] = t != 0
	default:
		delete(m, key)
	}
}
