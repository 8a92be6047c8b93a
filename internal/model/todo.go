package model

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities for sorting: high first, low last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// TodoStatus is the workflow status of a todo. It is stored next to
// Completed and is not derived from it; toggling only touches Completed.
type TodoStatus string

const (
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

func (s TodoStatus) IsValid() bool {
	return s == TodoStatusTodo || s == TodoStatusInProgress || s == TodoStatusCompleted
}

type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Text        string     `json:"text"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Status      TodoStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTodo is the payload of an add: a todo without ID, CreatedAt and UserID.
type NewTodo struct {
	Text        string
	Description string
	Completed   bool
	Priority    Priority
	Status      TodoStatus
	DueDate     *time.Time
}

// Normalize trims text fields and fills in the default priority and status.
func (n NewTodo) Normalize() NewTodo {
	n.Text = strings.TrimSpace(n.Text)
	n.Description = strings.TrimSpace(n.Description)
	if n.Priority == "" {
		n.Priority = PriorityLow
	}
	if n.Status == "" {
		n.Status = TodoStatusTodo
	}
	return n
}

// TodoPatch holds the fields of an update. Nil fields are left untouched.
type TodoPatch struct {
	Text         *string     `json:"text,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Completed    *bool       `json:"completed,omitempty"`
	Priority     *Priority   `json:"priority,omitempty"`
	Status       *TodoStatus `json:"status,omitempty"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	ClearDueDate bool        `json:"-"`
}

func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Status == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply returns t with the patch fields written over it.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	return t
}
