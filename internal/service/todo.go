package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-app/internal/cache"
	"github.com/jaekwang-park/todo-app/internal/model"
	"github.com/jaekwang-park/todo-app/internal/notify"
	"github.com/jaekwang-park/todo-app/internal/repository"
	"github.com/jaekwang-park/todo-app/internal/session"
)

const defaultRemoteTimeout = 5 * time.Second

// IdentitySource reports who is signed in.
type IdentitySource interface {
	Current() (session.Identity, bool)
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(n notify.Notification) notify.Notification
}

// Busy reports which kinds of mutation are in flight.
type Busy struct {
	Adding   bool `json:"is_adding"`
	Toggling bool `json:"is_toggling"`
	Updating bool `json:"is_updating"`
	Deleting bool `json:"is_deleting"`
}

// TodoOption configures a TodoService.
type TodoOption func(*TodoService)

// WithRemoteTimeout bounds every remote store call of a mutation.
func WithRemoteTimeout(d time.Duration) TodoOption {
	return func(s *TodoService) {
		if d > 0 {
			s.remoteTimeout = d
		}
	}
}

// WithClock sets the time source used for provisional todos.
func WithClock(now func() time.Time) TodoOption {
	return func(s *TodoService) { s.now = now }
}

// WithIDGenerator sets the generator of provisional todo IDs.
func WithIDGenerator(newID func() string) TodoOption {
	return func(s *TodoService) { s.newID = newID }
}

// TodoService runs the todo query and the todo mutations. Every mutation
// writes the cache first, then calls the remote store, then confirms or
// reverts the cache write and reports the outcome through the notifier.
// Mutations of the same todo are not serialized: when two are in flight the
// last remote response wins.
type TodoService struct {
	repo     repository.TodoRepository
	cache    *cache.Cache
	identity IdentitySource
	notifier Notifier
	logger   *slog.Logger

	remoteTimeout time.Duration
	now           func() time.Time
	newID         func() string

	adding   atomic.Int32
	toggling atomic.Int32
	updating atomic.Int32
	deleting atomic.Int32
}

// NewTodoService creates a TodoService that caches lists in c and reports
// mutation outcomes through notifier.
func NewTodoService(
	repo repository.TodoRepository,
	c *cache.Cache,
	identity IdentitySource,
	notifier Notifier,
	logger *slog.Logger,
	opts ...TodoOption,
) *TodoService {
	s := &TodoService{
		repo:          repo,
		cache:         c,
		identity:      identity,
		notifier:      notifier,
		logger:        logger,
		remoteTimeout: defaultRemoteTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTodoFetcher returns the cache fetcher that loads an owner's todos from
// the remote store.
func NewTodoFetcher(repo repository.TodoRepository) cache.Fetcher {
	return func(ctx context.Context, key cache.Key) ([]model.Todo, error) {
		return repo.Select(ctx, key.Owner)
	}
}

// List returns the signed-in user's todos, from the cache when present.
func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	id, ok := s.identity.Current()
	if !ok {
		return nil, ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	todos, err := s.cache.Query(ctx, cache.TodosKey(id.UserID))
	if err != nil {
		return nil, remoteError("failed to list todos", err)
	}
	return todos, nil
}

// Add creates a todo. Without a signed-in user it does nothing.
//
// A provisional todo with a local ID is prepended to the cache before the
// insert is sent. Whatever the outcome, the list is then refetched, which
// replaces the provisional row with the stored one or drops it.
func (s *TodoService) Add(ctx context.Context, input model.NewTodo) error {
	id, ok := s.identity.Current()
	if !ok {
		s.logger.DebugContext(ctx, "add todo skipped: not signed in")
		return nil
	}

	input = input.Normalize()
	if err := validateNewTodo(input); err != nil {
		return err
	}

	s.adding.Add(1)
	defer s.adding.Add(-1)

	key := cache.TodosKey(id.UserID)
	row := model.Todo{
		UserID:      id.UserID,
		Text:        input.Text,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
	}

	provisional := row
	provisional.ID = s.newID()
	provisional.CreatedAt = s.now().UTC()
	s.cache.Patch(key, func(old []model.Todo) []model.Todo {
		return append([]model.Todo{provisional}, old...)
	})

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	_, err := s.repo.Insert(rctx, row)
	s.cache.Invalidate(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to add todo", "user_id", id.UserID, "error", err)
		s.notifier.Notify(notify.Notification{
			Title:       "Failed to add todo",
			Description: "There was an error adding your todo. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		return remoteError("failed to add todo", err)
	}

	s.notifier.Notify(notify.Notification{
		Title:       "Todo added",
		Description: "Your todo has been added successfully.",
		Variant:     notify.VariantSuccess,
	})
	return nil
}

// Toggle flips the completed flag of a todo whose current value is
// completed. On failure the flag is flipped back. The cache is only patched
// when the owner's list is already cached.
func (s *TodoService) Toggle(ctx context.Context, todoID string, completed bool) error {
	id, ok := s.identity.Current()
	if !ok {
		s.notifyUpdateFailed()
		return ErrUnauthenticated
	}

	s.toggling.Add(1)
	defer s.toggling.Add(-1)

	key := cache.TodosKey(id.UserID)
	patched := s.cache.PatchIfPresent(key, setCompleted(todoID, !completed))

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	next := !completed
	if _, err := s.repo.Update(rctx, id.UserID, todoID, model.TodoPatch{Completed: &next}); err != nil {
		if patched {
			s.cache.PatchIfPresent(key, setCompleted(todoID, completed))
		}
		s.logger.ErrorContext(ctx, "failed to toggle todo", "user_id", id.UserID, "todo_id", todoID, "error", err)
		s.notifyUpdateFailed()
		return remoteError("failed to toggle todo", err)
	}

	state := "incomplete"
	if next {
		state = "completed"
	}
	s.notifier.Notify(notify.Notification{
		Title:       "Todo updated",
		Description: fmt.Sprintf("Todo marked as %s.", state),
		Variant:     notify.VariantSuccess,
	})
	s.cache.Invalidate(ctx, key)
	return nil
}

// Update writes the patch fields of a todo. On failure the cached row is
// restored to what it was before the update. Like Toggle, it leaves an
// uncached list uncached.
func (s *TodoService) Update(ctx context.Context, todoID string, patch model.TodoPatch) error {
	patch, err := normalizePatch(patch)
	if err != nil {
		return err
	}

	id, ok := s.identity.Current()
	if !ok {
		s.notifyUpdateFailed()
		return ErrUnauthenticated
	}

	s.updating.Add(1)
	defer s.updating.Add(-1)

	key := cache.TodosKey(id.UserID)
	var previous *model.Todo
	s.cache.PatchIfPresent(key, func(old []model.Todo) []model.Todo {
		out := make([]model.Todo, len(old))
		for i, t := range old {
			if t.ID == todoID {
				prev := t
				previous = &prev
				t = patch.Apply(t)
			}
			out[i] = t
		}
		return out
	})

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	if _, err := s.repo.Update(rctx, id.UserID, todoID, patch); err != nil {
		if previous != nil {
			restored := *previous
			s.cache.PatchIfPresent(key, func(old []model.Todo) []model.Todo {
				out := make([]model.Todo, len(old))
				for i, t := range old {
					if t.ID == todoID {
						t = restored
					}
					out[i] = t
				}
				return out
			})
		}
		s.logger.ErrorContext(ctx, "failed to update todo", "user_id", id.UserID, "todo_id", todoID, "error", err)
		s.notifyUpdateFailed()
		return remoteError("failed to update todo", err)
	}

	s.notifier.Notify(notify.Notification{
		Title:       "Todo updated",
		Description: "Your todo has been updated successfully.",
		Variant:     notify.VariantSuccess,
	})
	s.cache.Invalidate(ctx, key)
	return nil
}

// Delete removes a todo. It requires the owner's list to be cached, since a
// failed delete restores that list exactly.
func (s *TodoService) Delete(ctx context.Context, todoID string) error {
	var owner string
	if id, ok := s.identity.Current(); ok {
		owner = id.UserID
	}
	key := cache.TodosKey(owner)

	previous, ok := s.cache.Read(key)
	if !ok {
		s.logger.WarnContext(ctx, "delete todo aborted: list not cached", "user_id", owner, "todo_id", todoID)
		s.notifier.Notify(notify.Notification{
			Title:       "Error",
			Description: "Could not delete todo. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		return ErrNoCachedList
	}

	s.deleting.Add(1)
	defer s.deleting.Add(-1)

	s.cache.Patch(key, func(old []model.Todo) []model.Todo {
		out := make([]model.Todo, 0, len(old))
		for _, t := range old {
			if t.ID != todoID {
				out = append(out, t)
			}
		}
		return out
	})

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	if err := s.repo.Delete(rctx, owner, todoID); err != nil {
		s.cache.Write(key, previous)
		s.logger.ErrorContext(ctx, "failed to delete todo", "user_id", owner, "todo_id", todoID, "error", err)
		s.notifier.Notify(notify.Notification{
			Title:       "Failed to delete todo",
			Description: "There was an error deleting your todo. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		return remoteError("failed to delete todo", err)
	}

	s.notifier.Notify(notify.Notification{
		Title:       "Todo deleted",
		Description: "Your todo has been deleted successfully.",
		Variant:     notify.VariantSuccess,
	})
	s.cache.Invalidate(ctx, key)
	return nil
}

func (s *TodoService) IsAdding() bool   { return s.adding.Load() > 0 }
func (s *TodoService) IsToggling() bool { return s.toggling.Load() > 0 }
func (s *TodoService) IsUpdating() bool { return s.updating.Load() > 0 }
func (s *TodoService) IsDeleting() bool { return s.deleting.Load() > 0 }

func (s *TodoService) Busy() Busy {
	return Busy{
		Adding:   s.IsAdding(),
		Toggling: s.IsToggling(),
		Updating: s.IsUpdating(),
		Deleting: s.IsDeleting(),
	}
}

func (s *TodoService) notifyUpdateFailed() {
	s.notifier.Notify(notify.Notification{
		Title:       "Failed to update todo",
		Description: "There was an error updating your todo. Please try again.",
		Variant:     notify.VariantDestructive,
	})
}

func setCompleted(todoID string, completed bool) func([]model.Todo) []model.Todo {
	return func(old []model.Todo) []model.Todo {
		out := make([]model.Todo, len(old))
		for i, t := range old {
			if t.ID == todoID {
				t.Completed = completed
			}
			out[i] = t
		}
		return out
	}
}

func validateNewTodo(n model.NewTodo) error {
	if n.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if !n.Priority.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, n.Priority)
	}
	if !n.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, n.Status)
	}
	return nil
}

func normalizePatch(p model.TodoPatch) (model.TodoPatch, error) {
	if p.IsEmpty() {
		return p, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			return p, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
		}
		p.Text = &text
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return p, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, *p.Priority)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return p, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *p.Status)
	}
	return p, nil
}

func remoteError(msg string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", msg, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrRemote, err)
}
