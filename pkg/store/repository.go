package store

import (
	"fmt"
	"sync"
)

// Repository owns the authoritative in-memory document and serializes every
// read-modify-write against it. Discord delivers events on separate
// goroutines, so two handlers could otherwise load stale snapshots and
// overwrite each other's saves.
type Repository struct {
	mu      sync.Mutex
	backend Backend
	doc     *Document
}

func NewRepository(backend Backend) (*Repository, error) {
	doc, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	return &Repository{backend: backend, doc: doc}, nil
}

// Update runs fn against the document under the store lock and persists the
// full document afterwards. fn must not block on I/O; handlers do their
// transport calls outside the critical section.
func (r *Repository) Update(fn func(*Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := fn(r.doc); err != nil {
		return err
	}
	return r.backend.Save(r.doc)
}

// View runs fn against the document read-only, without persisting.
func (r *Repository) View(fn func(*Document)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.doc)
}

// ChatLocker hands out one mutex per chat id so a whole handling cycle for
// a group runs to completion before the next event for that group starts.
// Events for different groups still proceed in parallel.
type ChatLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatLocker() *ChatLocker {
	return &ChatLocker{locks: map[string]*sync.Mutex{}}
}

func (c *ChatLocker) Lock(chatID string) func() {
	c.mu.Lock()
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
