package botguard

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// FileCache stores outputs on a filesystem, one JSON file per key, so
// tokens survive restarts of the server.
type FileCache struct {
	fs      afero.Fs
	rootDir string
	mu      sync.Mutex
}

// NewFileCache creates a cache under rootDir, creating the directory when
// needed. A nil fs uses the OS filesystem.
func NewFileCache(fs afero.Fs, rootDir string) (*FileCache, error) {
	if rootDir == "" {
		return nil, errors.New("botguard: cache dir is required")
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{fs: fs, rootDir: rootDir}, nil
}

func (c *FileCache) filenameForKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.rootDir, fmt.Sprintf("%x.json", sum[:]))
}

type fileEntry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c *FileCache) Get(key string) (Output, bool) {
	fn := c.filenameForKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := afero.ReadFile(c.fs, fn)
	if err != nil {
		return Output{}, false
	}
	var e fileEntry
	if err := json.Unmarshal(b, &e); err != nil {
		_ = c.fs.Remove(fn)
		return Output{}, false
	}
	out := Output{Token: e.Token, ExpiresAt: e.ExpiresAt}
	if out.Expired(time.Now()) {
		_ = c.fs.Remove(fn)
		return Output{}, false
	}
	return out, true
}

func (c *FileCache) Set(key string, value Output) {
	fn := c.filenameForKey(key)
	b, err := json.Marshal(fileEntry{Token: value.Token, ExpiresAt: value.ExpiresAt})
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := fn + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, b, 0o600); err != nil {
		return
	}
	_ = c.fs.Rename(tmp, fn)
}
