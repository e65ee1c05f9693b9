package storage

import (
	"context"
	"fmt"
)

// Sequence hands out monotonically increasing ids per collection name. The last issued
// id of every collection is persisted, so deleting the newest record never frees its id.
type Sequence struct {
	doc *Document[map[string]int]
}

func NewSequence(path string, opts DocumentOptions) (*Sequence, error) {
	doc, err := NewDocument(path, func() map[string]int { return map[string]int{} }, opts)
	if err != nil {
		return nil, err
	}
	return &Sequence{doc: doc}, nil
}

// Next returns the next id for name. floor is the highest id currently present in the
// collection; the result is always greater than both floor and any id issued before.
func (s *Sequence) Next(ctx context.Context, name string, floor int) (int, error) {
	var next int
	err := s.doc.Update(ctx, func(seq *map[string]int) error {
		last := (*seq)[name]
		if floor > last {
			last = floor
		}
		next = last + 1
		(*seq)[name] = next
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return next, nil
}
