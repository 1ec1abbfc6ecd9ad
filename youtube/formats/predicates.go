// Package formats converts player responses into raw formats and resolves
// their download URLs.
package formats

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ytget/ytapi/types"
)

// hasDirectURL returns true when the format already contains a resolvable URL.
// Formats without direct URLs need signature deciphering.
func hasDirectURL(format types.Format) bool {
	return strings.TrimSpace(format.URL) != ""
}

// NeedsPlayerJS reports whether resolving the format involves player.js:
// a signatureCipher, or a direct URL carrying an "n" parameter.
func NeedsPlayerJS(format types.Format) bool {
	if !hasDirectURL(format) {
		return strings.TrimSpace(format.SignatureCipher) != ""
	}
	u, err := url.Parse(format.URL)
	if err != nil {
		return false
	}
	return u.Query().Get("n") != ""
}

// intField reads a JSON number, tolerating numbers encoded as strings.
func intField(m map[string]any, key string) int {
	return int(int64Field(m, key))
}

func int64Field(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
