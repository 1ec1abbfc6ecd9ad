package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ytget/ytapi/errs"
)

const videoIDLength = 11

var videoHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
}

// pathPrefixes carry the id as the next path segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

func isVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// ExtractVideoID returns the 11 character video id of a watch, youtu.be,
// shorts, embed or live URL. A bare id is returned as is. Anything else
// yields errs.ErrUnsupportedURL.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if isVideoID(ref) {
		return ref, nil
	}
	raw := ref
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedURL, ref)
	}

	var id string
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be":
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	case videoHosts[host]:
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, p := range pathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, p); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}
	if !isVideoID(id) {
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedURL, ref)
	}
	return id, nil
}
