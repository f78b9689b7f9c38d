package store

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNoNotes is returned when the store holds no notes yet.
var ErrNoNotes = errors.New("no notes yet")

// NoteStore is the durable backend for sticky notes. Notes are plain text
// lines, kept in insertion order.
type NoteStore interface {
	// Add appends a note.
	Add(ctx context.Context, message string) error
	// List returns all notes in insertion order.
	List(ctx context.Context) ([]string, error)
	// Latest returns the most recently added note,
	// or ErrNoNotes when the store is empty.
	Latest(ctx context.Context) (string, error)
	// Count returns the number of notes.
	Count(ctx context.Context) (int, error)
}
