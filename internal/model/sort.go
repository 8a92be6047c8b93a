package model

import (
	"fmt"
	"slices"
)

type SortBy string

const (
	SortLatest   SortBy = "latest"
	SortDueDate  SortBy = "due-date"
	SortPriority SortBy = "priority"
)

// ParseSortBy maps a query value to a SortBy. An empty value means latest.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortLatest:
		return SortLatest, nil
	case SortDueDate, SortPriority:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort %q: must be one of latest, due-date, priority", s)
	}
}

// SortTodos splits todos into incomplete and complete groups, each ordered
// by the given sort. The input slice is not modified.
func SortTodos(todos []Todo, by SortBy) (incomplete, complete []Todo) {
	incomplete = []Todo{}
	complete = []Todo{}
	for _, t := range todos {
		if t.Completed {
			complete = append(complete, t)
		} else {
			incomplete = append(incomplete, t)
		}
	}

	cmp := compareFunc(by)
	slices.SortStableFunc(incomplete, cmp)
	slices.SortStableFunc(complete, cmp)
	return incomplete, complete
}

func compareFunc(by SortBy) func(a, b Todo) int {
	switch by {
	case SortDueDate:
		return func(a, b Todo) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		}
	case SortPriority:
		return func(a, b Todo) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	default:
		return func(a, b Todo) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}
