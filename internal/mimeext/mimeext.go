package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used unless the mime type says otherwise.
	DefaultExt = "mp4"
	// ExtM4A is used for audio that is not mp4-flavored.
	ExtM4A = "m4a"
	// ExtWebM is used for webm video.
	ExtWebM = "webm"
)

// ExtFromMime returns the attachment extension (without dot) for a variant's
// mime type: audio that is not mp4 becomes m4a, webm video becomes webm and
// everything else is mp4.
func ExtFromMime(mime string) string {
	mime = strings.ToLower(mime)
	switch {
	case strings.Contains(mime, "audio") && !strings.Contains(mime, "mp4"):
		return ExtM4A
	case strings.Contains(mime, "video") && strings.Contains(mime, "webm"):
		return ExtWebM
	}
	return DefaultExt
}

// Subtype returns the mime subtype without parameters, e.g. "mp4" for
// `video/mp4; codecs="avc1"`.
func Subtype(mime string) string {
	base := Base(mime)
	if i := strings.Index(base, "/"); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Base returns the lower-cased mime type without parameters.
func Base(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
