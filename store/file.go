package store

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// The file store keeps one note per line in a plain text file, appending on
// Add. The file is created on first use. Reads parse the whole file; the
// store is meant for small interactive note collections, not bulk data.
type fileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a NoteStore backed by a text file at the given path.
func NewFileStore(path string) NoteStore {
	return &fileStore{path: path}
}

func (s *fileStore) Add(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open notes file")
	}
	defer f.Close()

	if _, err := f.WriteString(message + "\n"); err != nil {
		return errors.Wrap(err, "failed to append note")
	}
	return nil
}

func (s *fileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *fileStore) Latest(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.readAll()
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "", ErrNoNotes
	}
	return notes[len(notes)-1], nil
}

func (s *fileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.readAll()
	if err != nil {
		return 0, err
	}
	return len(notes), nil
}

func (s *fileStore) readAll() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read notes file")
	}

	var notes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			notes = append(notes, line)
		}
	}
	return notes, nil
}
