package sanitize

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxBaseLength is the maximum number of characters kept from the title.
	MaxBaseLength = 100
	// DefaultName is the replacement base when nothing of the title survives.
	DefaultName = "video"
)

func keep(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', '.', '_', '-':
		return true
	}
	return false
}

// SafeBase reduces a title to letters, digits, space, period, underscore and
// hyphen, truncated to MaxBaseLength characters with trailing spaces and
// periods removed. The result may be empty.
func SafeBase(title string) string {
	var b strings.Builder
	for _, r := range title {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if r := []rune(name); len(r) > MaxBaseLength {
		name = string(r[:MaxBaseLength])
	}
	return strings.TrimRight(strings.TrimSpace(name), " .")
}

// AttachmentName builds "{base}_{itag}.{ext}" for a downloaded variant.
func AttachmentName(title, itag, ext string) string {
	base := SafeBase(title)
	if base == "" {
		base = DefaultName
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return base + "_" + itag + "." + ext
}

// AttachmentNameInt is AttachmentName for a numeric itag.
func AttachmentNameInt(title string, itag int, ext string) string {
	return AttachmentName(title, strconv.Itoa(itag), ext)
}
