// Package staging hands out request-scoped temporary directories.
//
// Every directory gets a fresh uuid-based name under a common root, so
// concurrent requests never share one. Release removes the directory
// recursively and only logs when that fails.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/internal/logger"
)

// DefaultPrefix is prepended to every directory name.
const DefaultPrefix = "ytapi_dl_"

// Stager creates staging directories on a filesystem.
type Stager struct {
	fs     afero.Fs
	root   string
	prefix string
	log    *logger.ComponentLogger
}

// New returns a Stager that creates directories under root. A nil fs uses the
// OS filesystem, an empty root uses os.TempDir and an empty prefix uses
// DefaultPrefix.
func New(fs afero.Fs, root, prefix string) *Stager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(root) == "" {
		root = os.TempDir()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Stager{
		fs:     fs,
		root:   root,
		prefix: prefix,
		log:    logger.WithComponent(logger.ComponentStaging),
	}
}

// Fs returns the filesystem directories are created on.
func (s *Stager) Fs() afero.Fs { return s.fs }

// Root returns the parent directory of all staging directories.
func (s *Stager) Root() string { return s.root }

// Prefix returns the directory name prefix.
func (s *Stager) Prefix() string { return s.prefix }

// Acquire creates a new, uniquely named directory. Callers must Release it.
func (s *Stager) Acquire() (*Dir, error) {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create root: %w", err)
	}
	path := filepath.Join(s.root, s.prefix+uuid.NewString())
	if err := s.fs.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("staging: create dir: %w", err)
	}
	s.log.Debug("Acquired staging directory", map[string]interface{}{"dir": path})
	return &Dir{fs: s.fs, path: path, log: s.log}, nil
}

// Dir is a single staging directory.
type Dir struct {
	fs   afero.Fs
	path string
	log  *logger.ComponentLogger
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Fs returns the filesystem the directory lives on.
func (d *Dir) Fs() afero.Fs { return d.fs }

// Join returns the path of name inside the directory.
func (d *Dir) Join(name string) string { return filepath.Join(d.path, name) }

// Newest returns the most recently modified regular file in the directory.
// An empty directory yields errs.ErrDownloadProducedNoFile.
func (d *Dir) Newest() (string, error) {
	entries, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		return "", fmt.Errorf("staging: read dir: %w", err)
	}
	var newest os.FileInfo
	for _, fi := range entries {
		if !fi.Mode().IsRegular() {
			continue
		}
		if newest == nil || fi.ModTime().After(newest.ModTime()) {
			newest = fi
		}
	}
	if newest == nil {
		return "", errs.ErrDownloadProducedNoFile
	}
	return d.Join(newest.Name()), nil
}

// Resolve returns the path of name when it exists and falls back to the
// newest file otherwise.
func (d *Dir) Resolve(name string) (string, error) {
	expected := d.Join(name)
	if fi, err := d.fs.Stat(expected); err == nil && fi.Mode().IsRegular() {
		return expected, nil
	}
	found, err := d.Newest()
	if err != nil {
		return "", err
	}
	d.log.Info("Expected file missing, using newest file", map[string]interface{}{
		"expected": name,
		"found":    filepath.Base(found),
	})
	return found, nil
}

// Release removes the directory and everything in it. Failures are logged.
// Release is safe to call more than once.
func (d *Dir) Release() {
	if err := d.fs.RemoveAll(d.path); err != nil {
		d.log.Warn("Failed to remove staging directory", map[string]interface{}{
			"dir":   d.path,
			"error": err.Error(),
		})
		return
	}
	d.log.Debug("Released staging directory", map[string]interface{}{"dir": d.path})
}
