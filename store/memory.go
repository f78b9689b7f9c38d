package store

import (
	"context"
	"sync"
)

type inMemory struct {
	mu    sync.RWMutex
	notes []string
}

// NewMemoryStore returns a NoteStore keeping notes in process memory.
func NewMemoryStore() NoteStore {
	return &inMemory{}
}

func (m *inMemory) Add(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, message)
	return nil
}

func (m *inMemory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.notes))
	copy(out, m.notes)
	return out, nil
}

func (m *inMemory) Latest(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.notes) == 0 {
		return "", ErrNoNotes
	}
	return m.notes[len(m.notes)-1], nil
}

func (m *inMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes), nil
}
