// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jaekwang-park/todo-app/internal/model"
	"github.com/jaekwang-park/todo-app/internal/repository"
)

// FakeStore is an in-memory implementation of repository.TodoRepository for
// testing.
type FakeStore struct {
	mu     sync.Mutex
	todos  map[string][]model.Todo // userID -> todos, newest first
	nextID int
	now    func() time.Time

	// Error injection for testing
	SelectErr error
	InsertErr error
	UpdateErr error
	DeleteErr error

	// Gate, when set, holds every write until it receives a value or is
	// closed.
	Gate chan struct{}

	SelectCalls int
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		todos: make(map[string][]model.Todo),
		now:   func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// Seed adds todos for their owners as if they had been stored already.
func (f *FakeStore) Seed(todos ...model.Todo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range todos {
		f.todos[t.UserID] = append(f.todos[t.UserID], t)
	}
}

// Todos returns what is stored for userID.
func (f *FakeStore) Todos(userID string) []model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Todo(nil), f.todos[userID]...)
}

// Select implements repository.TodoRepository.
func (f *FakeStore) Select(ctx context.Context, userID string) ([]model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SelectCalls++
	if f.SelectErr != nil {
		return nil, f.SelectErr
	}
	return append([]model.Todo{}, f.todos[userID]...), nil
}

// Insert implements repository.TodoRepository.
func (f *FakeStore) Insert(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if err := f.wait(ctx); err != nil {
		return model.Todo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return model.Todo{}, f.InsertErr
	}
	f.nextID++
	todo.ID = fmt.Sprintf("stored-%d", f.nextID)
	todo.CreatedAt = f.now()
	f.todos[todo.UserID] = append([]model.Todo{todo}, f.todos[todo.UserID]...)
	return todo, nil
}

// Update implements repository.TodoRepository.
func (f *FakeStore) Update(ctx context.Context, userID, todoID string, patch model.TodoPatch) (model.Todo, error) {
	if err := f.wait(ctx); err != nil {
		return model.Todo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return model.Todo{}, f.UpdateErr
	}
	for i, t := range f.todos[userID] {
		if t.ID == todoID {
			t = patch.Apply(t)
			f.todos[userID][i] = t
			return t, nil
		}
	}
	return model.Todo{}, sql.ErrNoRows
}

// Delete implements repository.TodoRepository.
func (f *FakeStore) Delete(ctx context.Context, userID, todoID string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	todos := f.todos[userID]
	for i, t := range todos {
		if t.ID == todoID {
			f.todos[userID] = append(todos[:i:i], todos[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *FakeStore) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ repository.TodoRepository = (*FakeStore)(nil)
