package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// Cache persists a guest session between runs. Load reports ok=false when no
// session has been stored yet.
type Cache interface {
	Load() (domain.GuestSession, bool, error)
	Save(domain.GuestSession) error
}

// MemCache keeps the session in memory only.
type MemCache struct {
	session domain.GuestSession
	set     bool
}

// NewMemCache constructs an empty in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{}
}

// Load returns the stored session, if any.
func (c *MemCache) Load() (domain.GuestSession, bool, error) {
	return c.session, c.set, nil
}

// Save stores the session.
func (c *MemCache) Save(s domain.GuestSession) error {
	c.session = s
	c.set = true
	return nil
}

// FileCache stores the session as a small JSON file, the server-side analog
// of the browser's persisted token + expiry pair.
type FileCache struct {
	path string
}

// NewFileCache constructs a cache backed by the given file path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load reads the session file. A missing file means no session yet.
func (c *FileCache) Load() (domain.GuestSession, bool, error) {
	payload, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.GuestSession{}, false, nil
		}
		return domain.GuestSession{}, false, fmt.Errorf("read session cache: %w", err)
	}
	var session domain.GuestSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.GuestSession{}, false, fmt.Errorf("parse session cache: %w", err)
	}
	return session, session.ID != "", nil
}

// Save writes the session file, creating parent directories as needed.
func (c *FileCache) Save(s domain.GuestSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, payload, 0o600); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return nil
}
