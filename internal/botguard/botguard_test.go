package botguard

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: Off},
		{in: "off", want: Off},
		{in: "AUTO", want: Auto},
		{in: "force", want: Force},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && tt.in != "" {
			if again, _ := ParseMode(got.String()); again != got {
				t.Errorf("String() of %v does not parse back", got)
			}
		}
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	key := "ua|WEB|1.2.3|visitor"
	out := Output{Token: "abc", ExpiresAt: time.Now().Add(time.Minute)}

	if _, ok := c.Get(key); ok {
		t.Fatalf("expected empty cache miss")
	}
	c.Set(key, out)
	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Token != out.Token {
		t.Fatalf("token mismatch: got %q want %q", got.Token, out.Token)
	}

	c.Set(key, Output{Token: "old", ExpiresAt: time.Now().Add(-time.Second)})
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
}

func TestFileCache_SetGet(t *testing.T) {
	fs := afero.NewMemMapFs()
	fc, err := NewFileCache(fs, "/cache/botguard")
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	key := "ua|WEB|1.2.3|visitor"
	out := Output{Token: "xyz", ExpiresAt: time.Now().Add(time.Minute)}

	if _, ok := fc.Get(key); ok {
		t.Fatalf("expected empty cache miss")
	}
	fc.Set(key, out)
	got, ok := fc.Get(key)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.Token != out.Token {
		t.Fatalf("token mismatch: got %q want %q", got.Token, out.Token)
	}

	entries, _ := afero.ReadDir(fs, "/cache/botguard")
	if len(entries) != 1 {
		t.Fatalf("expected one cache file, got %d", len(entries))
	}
}

func TestFileCache_ExpiredAndCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	fc, _ := NewFileCache(fs, "/cache")
	key := "ua|WEB|1.2.3|visitor"

	fc.Set(key, Output{Token: "will-expire", ExpiresAt: time.Now().Add(-time.Second)})
	if _, ok := fc.Get(key); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
	if ok, _ := afero.Exists(fs, fc.filenameForKey(key)); ok {
		t.Error("expired entry should be removed")
	}

	_ = afero.WriteFile(fs, fc.filenameForKey(key), []byte("{not json"), 0o600)
	if _, ok := fc.Get(key); ok {
		t.Fatalf("expected corrupt entry to be a miss")
	}
}

func TestNewFileCache_RequiresDir(t *testing.T) {
	if _, err := NewFileCache(afero.NewMemMapFs(), ""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
