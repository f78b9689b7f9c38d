// Package notes provides the sticky-note tools: add_note, read_notes and
// count_notes. All of them are thin wrappers over a store.NoteStore.
package notes

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NoNotesMessage is returned by read-side tools when the store is empty.
const NoNotesMessage = "No notes yet."
