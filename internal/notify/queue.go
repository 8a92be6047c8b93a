// Package notify keeps the transient user-facing messages of the session.
package notify

import (
	"strconv"
	"sync"
)

// Limit is the number of notifications retained. A new notification evicts
// every older one.
const Limit = 1

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
	Open        bool    `json:"open"`
}

// Queue is safe for concurrent use.
type Queue struct {
	mu        sync.Mutex
	count     uint64
	entries   []Notification
	listeners map[uint64]func([]Notification)
	nextSub   uint64
	version   uint64

	// deliverMu orders listener calls; delivered is the newest version
	// listeners have seen.
	deliverMu sync.Mutex
	delivered uint64
}

// change is a snapshot taken in the same critical section as the mutation
// that produced it.
type change struct {
	version uint64
	entries []Notification
	fns     []func([]Notification)
}

func NewQueue() *Queue {
	return &Queue{listeners: make(map[uint64]func([]Notification))}
}

// Notify adds n as an open notification with a fresh ID and returns it.
func (q *Queue) Notify(n Notification) Notification {
	q.mu.Lock()
	q.count++
	n.ID = strconv.FormatUint(q.count, 10)
	n.Open = true
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	q.entries = append([]Notification{n}, q.entries...)
	if len(q.entries) > Limit {
		q.entries = q.entries[:Limit]
	}
	c := q.changed()
	q.mu.Unlock()

	q.publish(c)
	return n
}

// Update replaces the content of the notification with n.ID. Empty fields of
// n keep their current value. It reports whether the ID was found.
func (q *Queue) Update(n Notification) bool {
	q.mu.Lock()
	found := false
	for i := range q.entries {
		if q.entries[i].ID != n.ID {
			continue
		}
		found = true
		if n.Title != "" {
			q.entries[i].Title = n.Title
		}
		if n.Description != "" {
			q.entries[i].Description = n.Description
		}
		if n.Variant != "" {
			q.entries[i].Variant = n.Variant
		}
	}
	if !found {
		q.mu.Unlock()
		return false
	}
	c := q.changed()
	q.mu.Unlock()

	q.publish(c)
	return true
}

// Dismiss closes the notification with the given ID, or every notification
// when id is empty. Dismissed entries stay listed until evicted.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	for i := range q.entries {
		if id == "" || q.entries[i].ID == id {
			q.entries[i].Open = false
		}
	}
	c := q.changed()
	q.mu.Unlock()

	q.publish(c)
}

// List returns the retained notifications, newest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Latest returns the most recent notification.
func (q *Queue) Latest() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Notification{}, false
	}
	return q.entries[0], true
}

// Subscribe registers fn to receive a snapshot after every change. Snapshots
// arrive in order; one superseded while another was being delivered is
// skipped. fn must not modify the queue. The returned function removes the
// subscription.
func (q *Queue) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	q.mu.Lock()
	q.nextSub++
	id := q.nextSub
	q.listeners[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

// changed records a new version of the entries. q.mu must be held.
func (q *Queue) changed() change {
	q.version++
	fns := make([]func([]Notification), 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	return change{version: q.version, entries: q.snapshot(), fns: fns}
}

// publish hands c to the listeners unless a newer version has already been
// delivered, so listeners never see an older state after a newer one.
func (q *Queue) publish(c change) {
	q.deliverMu.Lock()
	defer q.deliverMu.Unlock()
	if c.version <= q.delivered {
		return
	}
	q.delivered = c.version
	for _, fn := range c.fns {
		fn(c.entries)
	}
}

func (q *Queue) snapshot() []Notification {
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}
