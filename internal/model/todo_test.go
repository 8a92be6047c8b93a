package model_test

import (
	"testing"
	"time"

	"github.com/jaekwang-park/todo-app/internal/model"
)

func TestTodoStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status model.TodoStatus
		want   bool
	}{
		{"todo", model.TodoStatusTodo, true},
		{"in_progress", model.TodoStatusInProgress, true},
		{"completed", model.TodoStatusCompleted, true},
		{"empty", model.TodoStatus(""), false},
		{"pending", model.TodoStatus("pending"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("TodoStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPriority_IsValidAndRank(t *testing.T) {
	tests := []struct {
		priority  model.Priority
		wantValid bool
		wantRank  int
	}{
		{model.PriorityHigh, true, 0},
		{model.PriorityMedium, true, 1},
		{model.PriorityLow, true, 2},
		{model.Priority("urgent"), false, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.IsValid(); got != tt.wantValid {
				t.Errorf("IsValid() = %v, want %v", got, tt.wantValid)
			}
			if got := tt.priority.Rank(); got != tt.wantRank {
				t.Errorf("Rank() = %d, want %d", got, tt.wantRank)
			}
		})
	}
}

func TestNewTodo_Normalize(t *testing.T) {
	got := model.NewTodo{Text: "  Buy milk \n", Description: "  "}.Normalize()

	if got.Text != "Buy milk" {
		t.Errorf("Text = %q, want %q", got.Text, "Buy milk")
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want empty", got.Description)
	}
	if got.Priority != model.PriorityLow {
		t.Errorf("Priority = %q, want low", got.Priority)
	}
	if got.Status != model.TodoStatusTodo {
		t.Errorf("Status = %q, want todo", got.Status)
	}

	kept := model.NewTodo{Text: "x", Priority: model.PriorityHigh, Status: model.TodoStatusInProgress}.Normalize()
	if kept.Priority != model.PriorityHigh || kept.Status != model.TodoStatusInProgress {
		t.Errorf("explicit priority/status overwritten: %+v", kept)
	}
}

func TestTodoPatch_Apply(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	base := model.Todo{
		ID:       "todo-1",
		Text:     "Old",
		Priority: model.PriorityLow,
		Status:   model.TodoStatusTodo,
		DueDate:  &due,
	}

	text := "New"
	high := model.PriorityHigh
	done := true

	t.Run("sets fields", func(t *testing.T) {
		got := model.TodoPatch{Text: &text, Priority: &high, Completed: &done}.Apply(base)
		if got.Text != "New" || got.Priority != model.PriorityHigh || !got.Completed {
			t.Errorf("unexpected result: %+v", got)
		}
		if got.Status != model.TodoStatusTodo {
			t.Errorf("status should be untouched, got %q", got.Status)
		}
		if base.Text != "Old" {
			t.Error("Apply must not modify its argument")
		}
	})

	t.Run("clears due date", func(t *testing.T) {
		got := model.TodoPatch{ClearDueDate: true}.Apply(base)
		if got.DueDate != nil {
			t.Errorf("expected due date cleared, got %v", got.DueDate)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if !(model.TodoPatch{}).IsEmpty() {
			t.Error("zero patch should be empty")
		}
		if (model.TodoPatch{ClearDueDate: true}).IsEmpty() {
			t.Error("clear-due-date patch should not be empty")
		}
	})
}
