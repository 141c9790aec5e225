package json

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/critic"
)

// Interface compliance check.
var _ critic.Store = (*Store)(nil)

// Save writes a Session to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, s critic.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, data)
}

// Load reads a Session from a JSON file.
func Load(path string) (critic.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return critic.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// LoadOrEmpty reads a Session and falls back to an empty one on any
// failure. The error is returned for logging only; a missing file is not an
// error.
func LoadOrEmpty(path string) (critic.Session, error) {
	s, err := Load(path)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return critic.Session{}, nil
	}
	return critic.Session{}, err
}

// Export writes the messages and style guide of a Session to path.
func Export(path string, s critic.Session) error {
	data, err := MarshalExport(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, data)
}

// Store saves sessions to a fixed path.
type Store struct {
	Path string
}

// NewStore returns a Store writing to path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Save implements [critic.Store].
func (s *Store) Save(session critic.Session) error {
	return Save(s.Path, session)
}

// Load reads the stored session, falling back to an empty one.
func (s *Store) Load() (critic.Session, error) {
	return LoadOrEmpty(s.Path)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directories: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
