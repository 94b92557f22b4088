package web

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskflow/internal/board"
)

// boardRegistry keeps one board per browser session, keyed by a random id
// stored in the session cookie.
type boardRegistry struct {
	ctx    context.Context
	mu     sync.Mutex
	boards map[string]*board.Board
}

func newBoardRegistry(ctx context.Context) *boardRegistry {
	return &boardRegistry{ctx: ctx, boards: make(map[string]*board.Board)}
}

// newKey returns a fresh board key.
func newKey() string {
	return uuid.NewString()
}

// get returns the board for key, creating it if needed.
func (r *boardRegistry) get(key string) *board.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[key]
	if !ok || b.Closed() {
		b = board.New(r.ctx)
		r.boards[key] = b
	}
	return b
}

// drop closes and forgets the board for key.
func (r *boardRegistry) drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[key]; ok {
		b.Close()
		delete(r.boards, key)
	}
}

func (r *boardRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

func (r *boardRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, b := range r.boards {
		b.Close()
		delete(r.boards, key)
	}
}
