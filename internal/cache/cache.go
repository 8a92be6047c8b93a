// Package cache holds the last known todo lists of the session, addressed by
// query key. Mutations write it optimistically before the remote store has
// answered; Invalidate reconciles an entry with the store in the background.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jaekwang-park/todo-app/internal/model"
)

// ResourceTodos is the resource kind of the todo list.
const ResourceTodos = "todos"

// Key addresses one cached list. A change of owner yields a different key,
// so lists of a previous identity are never read again.
type Key struct {
	Owner    string
	Resource string
}

// TodosKey returns the key of the owner's todo list.
func TodosKey(owner string) Key {
	return Key{Owner: owner, Resource: ResourceTodos}
}

// Fetcher loads the authoritative list for a key from the remote store.
type Fetcher func(ctx context.Context, key Key) ([]model.Todo, error)

type Cache struct {
	fetch          Fetcher
	logger         *slog.Logger
	refetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[Key][]model.Todo
	// gens counts the writes and invalidations of each key. A refetch only
	// stores its result if the generation it started with is still current.
	gens map[Key]uint64

	inflight sync.WaitGroup
}

func New(fetch Fetcher, logger *slog.Logger, refetchTimeout time.Duration) *Cache {
	if refetchTimeout <= 0 {
		refetchTimeout = 10 * time.Second
	}
	return &Cache{
		fetch:          fetch,
		logger:         logger,
		refetchTimeout: refetchTimeout,
		entries:        make(map[Key][]model.Todo),
		gens:           make(map[Key]uint64),
	}
}

// Read returns a copy of the cached list and whether the key is present.
func (c *Cache) Read(key Key) ([]model.Todo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	todos, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return clone(todos), true
}

// Write replaces the cached list. Refetches started before the write are
// discarded.
func (c *Cache) Write(key Key, todos []model.Todo) {
	c.mu.Lock()
	c.gens[key]++
	c.entries[key] = clone(todos)
	c.mu.Unlock()
}

// Patch replaces the cached list with fn applied to it. fn receives a copy
// (nil when the key is absent) and runs under the cache lock, so it must not
// call back into the cache.
func (c *Cache) Patch(key Key, fn func([]model.Todo) []model.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current []model.Todo
	if todos, ok := c.entries[key]; ok {
		current = clone(todos)
	}
	c.entries[key] = clone(fn(current))
}

// PatchIfPresent is Patch for a key that is already cached. It does nothing
// and reports false when the key is absent.
func (c *Cache) PatchIfPresent(key Key, fn func([]model.Todo) []model.Todo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	todos, ok := c.entries[key]
	if !ok {
		return false
	}
	c.entries[key] = clone(fn(clone(todos)))
	return true
}

// Query returns the cached list, fetching and storing it first on a miss.
func (c *Cache) Query(ctx context.Context, key Key) ([]model.Todo, error) {
	if todos, ok := c.Read(key); ok {
		return todos, nil
	}

	todos, err := c.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	c.Write(key, todos)
	return clone(todos), nil
}

// Invalidate refetches the key in the background and replaces the entry when
// the fetch succeeds. The refetch outlives the caller's context; on failure
// the current entry is kept. A refetch overtaken by a later Invalidate or
// Write of the same key drops its result.
func (c *Cache) Invalidate(ctx context.Context, key Key) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	c.gens[key]++
	gen := c.gens[key]
	c.mu.Unlock()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		fetchCtx, cancel := context.WithTimeout(ctx, c.refetchTimeout)
		defer cancel()

		todos, err := c.fetch(fetchCtx, key)
		if err != nil {
			c.logger.ErrorContext(ctx, "cache refetch failed",
				"owner", key.Owner,
				"resource", key.Resource,
				"error", err,
			)
			return
		}
		if !c.writeIfCurrent(key, gen, todos) {
			c.logger.DebugContext(ctx, "cache refetch superseded",
				"owner", key.Owner,
				"resource", key.Resource,
			)
			return
		}
		c.logger.DebugContext(ctx, "cache refetched",
			"owner", key.Owner,
			"resource", key.Resource,
			"count", len(todos),
		)
	}()
}

func (c *Cache) writeIfCurrent(key Key, gen uint64, todos []model.Todo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false
	}
	c.entries[key] = clone(todos)
	return true
}

// Wait blocks until every refetch started by Invalidate has finished.
func (c *Cache) Wait() {
	c.inflight.Wait()
}

func clone(todos []model.Todo) []model.Todo {
	if todos == nil {
		return nil
	}
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	return out
}
