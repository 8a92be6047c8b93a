package repository

import (
	"context"

	"github.com/jaekwang-park/todo-app/internal/model"
)

// TodoRepository is the remote row store for todos. Every call is scoped to
// one owner; rows of other owners are never visible.
type TodoRepository interface {
	// Select returns the owner's todos, newest first.
	Select(ctx context.Context, userID string) ([]model.Todo, error)
	Insert(ctx context.Context, todo model.Todo) (model.Todo, error)
	Update(ctx context.Context, userID, todoID string, patch model.TodoPatch) (model.Todo, error)
	Delete(ctx context.Context, userID, todoID string) error
}
