package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"waypoint-route-service/internal/adapters/tabular"
	"waypoint-route-service/internal/domain"
)

// FileStore keeps one JSON status document per session under Dir
// (<Dir>/<session>.json). It serialises writers within one process only.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(session string) (string, error) {
	if session == "" || strings.ContainsAny(session, `/\`) || session == "." || session == ".." {
		return "", fmt.Errorf("status file store: invalid session %q", session)
	}
	return filepath.Join(s.Dir, session+".json"), nil
}

func (s *FileStore) Load(_ context.Context, session string) (map[string]domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(session)
}

func (s *FileStore) load(session string) (map[string]domain.Status, error) {
	p, err := s.path(session)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.Status{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load statuses: open %q: %w", p, err)
	}
	defer f.Close()

	doc, err := tabular.ReadStatusDocument(f)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}
	return doc, nil
}

// Save merges statuses into the session document and rewrites it atomically.
func (s *FileStore) Save(_ context.Context, session string, statuses map[string]domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(statuses) == 0 {
		return nil
	}

	doc, err := s.load(session)
	if err != nil {
		return err
	}
	for name, st := range statuses {
		if _, err := domain.ParseStatus(string(st)); err != nil {
			return fmt.Errorf("save statuses: system %q: %w", name, err)
		}
		doc[name] = st
	}

	p, _ := s.path(session)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("save statuses: mkdir %q: %w", s.Dir, err)
	}

	tmp, err := os.CreateTemp(s.Dir, session+".*.tmp")
	if err != nil {
		return fmt.Errorf("save statuses: create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tabular.WriteStatusDocument(tmp, doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save statuses: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save statuses: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("save statuses: rename: %w", err)
	}
	return nil
}
