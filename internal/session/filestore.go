package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const tokenFileVersion = 1

var (
	// ErrStorePersist is returned when the token file cannot be written.
	ErrStorePersist = errors.New("session: failed to persist token")
	// ErrStoreCorrupted is returned when the token file cannot be decoded.
	ErrStoreCorrupted = errors.New("session: token file corrupted")
)

// TokenStore is durable client-local storage for the bearer token.
// Load returns "" when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

type tokenFile struct {
	Version int       `json:"version"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileTokenStore keeps the token in a single JSON file with atomic
// temp-file + rename writes.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileTokenStore creates a store at the given path.
// If the directory doesn't exist, it is created with 0700 permissions.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		return nil, errors.New("session: token file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("session: create directory: %w", err)
	}
	return &FileTokenStore{path: path, now: time.Now}, nil
}

// Path returns the token file path.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the stored token. A missing or empty file is not an error.
func (s *FileTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("session: open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("session: read token file: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreCorrupted, err)
	}
	if tf.Version > tokenFileVersion {
		return "", fmt.Errorf("%w: unsupported version %d", ErrStoreCorrupted, tf.Version)
	}
	return tf.Token, nil
}

// Save writes the token, replacing any previous one.
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tokenFile{
		Version: tokenFileVersion,
		Token:   token,
		SavedAt: s.now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrStorePersist, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write: %v", ErrStorePersist, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: fsync: %v", ErrStorePersist, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close: %v", ErrStorePersist, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename: %v", ErrStorePersist, err)
	}
	return nil
}

// Delete removes the token file. Deleting a missing file is a no-op.
func (s *FileTokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove: %v", ErrStorePersist, err)
	}
	return nil
}
