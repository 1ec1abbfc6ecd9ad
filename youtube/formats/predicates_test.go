package formats

import (
	"testing"

	"github.com/ytget/ytapi/types"
)

func TestHasDirectURL(t *testing.T) {
	if !hasDirectURL(types.Format{URL: "http://x"}) {
		t.Fatal("expected true for non-empty URL")
	}
	if hasDirectURL(types.Format{URL: "  "}) {
		t.Fatal("expected false for blank URL")
	}
}

func TestNeedsPlayerJS(t *testing.T) {
	tests := []struct {
		name   string
		format types.Format
		want   bool
	}{
		{name: "plain url", format: types.Format{URL: "https://r1.googlevideo.com/videoplayback?itag=18"}, want: false},
		{name: "url with n", format: types.Format{URL: "https://r1.googlevideo.com/videoplayback?itag=18&n=abc"}, want: true},
		{name: "cipher", format: types.Format{SignatureCipher: "s=abc&url=x"}, want: true},
		{name: "nothing", format: types.Format{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsPlayerJS(tt.format); got != tt.want {
				t.Errorf("NeedsPlayerJS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	m := map[string]any{"a": float64(18), "b": "1048576", "c": "x", "d": true}
	if intField(m, "a") != 18 {
		t.Error("number field")
	}
	if int64Field(m, "b") != 1048576 {
		t.Error("string number field")
	}
	if intField(m, "c") != 0 || intField(m, "d") != 0 || intField(m, "missing") != 0 {
		t.Error("non-numeric fields should be 0")
	}
	if stringField(m, "c") != "x" || stringField(m, "a") != "" {
		t.Error("string field")
	}
}
