package progress

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore keeps scan state in a JSON file next to the database. A flock
// sidecar guards against two scanner processes clobbering each other.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Load() (State, error) {
	if err := s.lock.Lock(); err != nil {
		return State{}, err
	}
	defer func() { _ = s.lock.Unlock() }()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt file resets to a clean inactive state.
		return State{}, s.write(State{})
	}
	return st, nil
}

func (s *FileStore) Save(st State) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.write(st)
}

func (s *FileStore) Clear() error {
	return s.Save(State{})
}

// write replaces the state file atomically via rename.
func (s *FileStore) write(st State) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
