package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/ytget/ytapi/errs"
)

const testRoot = "/tmp/staging"

func newMemStager() *Stager {
	return New(afero.NewMemMapFs(), testRoot, "")
}

func TestAcquire_UniqueDirectories(t *testing.T) {
	s := newMemStager()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		d, err := s.Acquire()
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		if seen[d.Path()] {
			t.Fatalf("duplicate directory %s", d.Path())
		}
		seen[d.Path()] = true
		if !strings.HasPrefix(filepath.Base(d.Path()), DefaultPrefix) {
			t.Errorf("directory %s lacks prefix", d.Path())
		}
		if ok, _ := afero.DirExists(s.Fs(), d.Path()); !ok {
			t.Errorf("directory %s was not created", d.Path())
		}
	}
}

func TestRelease_RemovesEverything(t *testing.T) {
	s := newMemStager()
	d, err := s.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(s.Fs(), d.Join("a.mp4"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Release()
	d.Release()

	if ok, _ := afero.Exists(s.Fs(), d.Path()); ok {
		t.Error("directory should be gone after Release")
	}
	entries, _ := afero.ReadDir(s.Fs(), testRoot)
	if len(entries) != 0 {
		t.Errorf("root should be empty, has %d entries", len(entries))
	}
}

func TestResolve(t *testing.T) {
	s := newMemStager()
	fs := s.Fs()

	t.Run("expected file", func(t *testing.T) {
		d, _ := s.Acquire()
		defer d.Release()
		_ = afero.WriteFile(fs, d.Join("other.mp4"), []byte("x"), 0o644)
		_ = afero.WriteFile(fs, d.Join("title_18.mp4"), []byte("x"), 0o644)

		got, err := d.Resolve("title_18.mp4")
		if err != nil {
			t.Fatal(err)
		}
		if got != d.Join("title_18.mp4") {
			t.Errorf("got %s", got)
		}
	})

	t.Run("newest fallback", func(t *testing.T) {
		d, _ := s.Acquire()
		defer d.Release()
		now := time.Now()
		for i, name := range []string{"old.mp4", "newest.webm", "middle.m4a"} {
			p := d.Join(name)
			_ = afero.WriteFile(fs, p, []byte(name), 0o644)
			mtime := now.Add(-time.Duration(10-i) * time.Minute)
			if name == "newest.webm" {
				mtime = now
			}
			_ = fs.Chtimes(p, mtime, mtime)
		}

		got, err := d.Resolve("title_18.mp4")
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(got) != "newest.webm" {
			t.Errorf("got %s, want newest.webm", got)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		d, _ := s.Acquire()
		defer d.Release()
		_ = fs.Mkdir(d.Join("sub"), 0o755)

		_, err := d.Resolve("title_18.mp4")
		if !errors.Is(err, errs.ErrDownloadProducedNoFile) {
			t.Errorf("expected ErrDownloadProducedNoFile, got %v", err)
		}
	})
}

func TestNew_Defaults(t *testing.T) {
	s := New(nil, "", "")
	if s.Root() != os.TempDir() {
		t.Errorf("root = %s", s.Root())
	}
	if s.Prefix() != DefaultPrefix {
		t.Errorf("prefix = %s", s.Prefix())
	}
	if _, ok := s.Fs().(*afero.OsFs); !ok {
		t.Errorf("default fs should be the OS filesystem, got %T", s.Fs())
	}
}

func TestOsFilesystem(t *testing.T) {
	root := t.TempDir()
	s := New(afero.NewOsFs(), root, "test_")
	d, err := s.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(d.Join("f.bin"), []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Release()
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Errorf("directory should be removed, stat err = %v", err)
	}
}
