// Package table provides the per-table sort and filter engine used by the
// holdings and watch list views.
package table

import (
	"cmp"
	"slices"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the sort selection of one table. A zero SortState means unsorted.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle returns the state after the user selects key: the same key while
// ascending flips to descending, anything else resets to ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Asc {
		return SortState{Key: key, Direction: Desc}
	}
	return SortState{Key: key, Direction: Asc}
}

// Field extracts a sortable value from an item. ok is false when the item
// has no value for the field; such items always sort last.
type Field[T any] func(item T) (value any, ok bool)

// Fields maps sort keys to their extractors.
type Fields[T any] map[string]Field[T]

// Sort returns a stably sorted copy of items. An empty or unknown key
// leaves the order unchanged.
func Sort[T any](items []T, state SortState, fields Fields[T]) []T {
	out := slices.Clone(items)
	field, ok := fields[state.Key]
	if state.Key == "" || !ok {
		return out
	}

	desc := state.Direction == Desc
	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := field(a)
		bv, bok := field(b)
		return Compare(av, aok, bv, bok, desc)
	})
	return out
}

// Compare orders two field values. Equal values compare 0, a missing value
// ranks after a present one in either direction, and present values use
// numeric or lexicographic ordering, reversed when desc is set.
func Compare(a any, aok bool, b any, bok bool, desc bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	c := compareValues(a, b)
	if desc {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	}
	return 0
}
