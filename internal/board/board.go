// Package board holds the in-memory task collection shown by the list view
// and the dialogs that change it.
//
// A Board mirrors the backend's task list for one viewer. It is replaced
// wholesale on every load and patched locally after each successful create,
// edit or delete, so it never needs a second round trip to stay current.
package board

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"taskflow/internal/service"
	"taskflow/internal/session"
)

// ErrClosed is returned by a load that finished after its board was closed.
// The result of such a load is discarded.
var ErrClosed = errors.New("board closed")

// Board is a mutex-guarded task collection with a lifetime.
type Board struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	tasks    []service.Task
	loaded   bool
	inflight int
	now      func() time.Time
}

// New creates a board that lives until Close is called or parent is done.
func New(parent context.Context) *Board {
	ctx, cancel := context.WithCancel(parent)
	return &Board{ctx: ctx, cancel: cancel, now: time.Now}
}

// Close ends the board's lifetime. In-flight loads are cancelled.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancel()
}

// Closed reports whether the board's lifetime has ended.
func (b *Board) Closed() bool {
	return b.ctx.Err() != nil
}

// Load fetches the full task list and replaces the collection.
// It requires a usable session in ctx.
func (b *Board) Load(ctx context.Context, svc service.Service) error {
	s, ok := session.FromContext(ctx)
	if !ok {
		return service.ErrNoSession
	}
	if err := s.Check(b.now()); err != nil {
		return err
	}
	if b.Closed() {
		return ErrClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(b.ctx, cancel)
	defer stop()

	b.mu.Lock()
	b.inflight++
	b.mu.Unlock()

	tasks, err := svc.ListTasks(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.inflight--
	if b.Closed() {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	b.tasks = slices.Clone(tasks)
	b.loaded = true
	return nil
}

// Loading reports whether a load is in flight.
func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight > 0
}

// Loaded reports whether a load has completed at least once.
func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Tasks returns a copy of the collection in server order.
func (b *Board) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tasks)
}

// Len returns the number of tasks.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Find returns the task with the given id.
func (b *Board) Find(id int) (service.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return service.Task{}, false
	}
	return b.tasks[i], true
}

// Filter returns the tasks with the given status. An empty status matches all.
func (b *Board) Filter(status service.Status) []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == "" {
		return slices.Clone(b.tasks)
	}
	var out []service.Task
	for _, t := range b.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Append adds a task at the end of the collection.
func (b *Board) Append(t service.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, t)
}

// Replace swaps the task with the same id for t. It reports whether a task
// was replaced.
func (b *Board) Replace(t service.Task) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(t.ID)
	if i < 0 {
		return false
	}
	b.tasks[i] = t
	return true
}

// Remove drops the task with the given id. It reports whether a task was
// removed.
func (b *Board) Remove(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.tasks)
	b.tasks = slices.DeleteFunc(b.tasks, func(t service.Task) bool { return t.ID == id })
	return len(b.tasks) != n
}

func (b *Board) index(id int) int {
	return slices.IndexFunc(b.tasks, func(t service.Task) bool { return t.ID == id })
}
