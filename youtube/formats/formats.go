package formats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ytget/ytapi/types"
	"github.com/ytget/ytapi/youtube/cipher"
	"github.com/ytget/ytapi/youtube/innertube"
)

// ParseFormats flattens streamingData into raw formats, muxed formats first.
// Entries without an itag are skipped.
func ParseFormats(data *innertube.PlayerResponse) []types.Format {
	if data == nil {
		return nil
	}
	formats := make([]types.Format, 0, len(data.StreamingData.Formats)+len(data.StreamingData.AdaptiveFormats))
	formats = appendFormats(formats, data.StreamingData.Formats, true)
	formats = appendFormats(formats, data.StreamingData.AdaptiveFormats, false)
	return formats
}

func appendFormats(out []types.Format, list []any, muxed bool) []types.Format {
	for _, raw := range list {
		f, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		itag := intField(f, "itag")
		if itag <= 0 {
			continue
		}
		format := types.Format{
			Itag:           itag,
			MimeType:       stringField(f, "mimeType"),
			Quality:        stringField(f, "qualityLabel"),
			Bitrate:        intField(f, "bitrate"),
			AverageBitrate: intField(f, "averageBitrate"),
			FPS:            intField(f, "fps"),
			Width:          intField(f, "width"),
			Height:         intField(f, "height"),
			AudioQuality:   stringField(f, "audioQuality"),
			Size:           int64Field(f, "contentLength"),
			Muxed:          muxed,
		}
		if u := stringField(f, "url"); u != "" {
			format.URL = u
		} else {
			format.SignatureCipher = stringField(f, "signatureCipher")
			if format.SignatureCipher == "" {
				format.SignatureCipher = stringField(f, "cipher")
			}
		}
		out = append(out, format)
	}
	return out
}

// ResolveFormatURL builds the final downloadable URL for a format. A direct
// URL only gets its "n" parameter decoded; a signatureCipher is deciphered
// first. playerJSURL may be empty when NeedsPlayerJS reports false.
func ResolveFormatURL(ctx context.Context, httpClient *http.Client, f types.Format, playerJSURL string) (string, error) {
	var u *url.URL
	switch {
	case hasDirectURL(f):
		parsed, err := url.Parse(f.URL)
		if err != nil {
			return "", fmt.Errorf("parse direct url: %w", err)
		}
		u = parsed
	case strings.TrimSpace(f.SignatureCipher) != "":
		if playerJSURL == "" {
			return "", cipher.NewError(cipher.ErrCodePlayerJSNotFound, "signatureCipher without player.js", nil)
		}
		parsed, err := url.ParseQuery(f.SignatureCipher)
		if err != nil {
			return "", cipher.NewError(cipher.ErrCodeSignatureInvalid, "parse signatureCipher", err)
		}
		sig := parsed.Get("s")
		sp := parsed.Get("sp")
		if sp == "" {
			sp = "signature"
		}
		cipherURL := parsed.Get("url")
		if cipherURL == "" || sig == "" {
			return "", cipher.NewError(cipher.ErrCodeSignatureInvalid, "signatureCipher missing signature or url", nil)
		}
		decoded, err := cipher.Decipher(ctx, httpClient, playerJSURL, sig)
		if err != nil {
			return "", err
		}
		u, err = url.Parse(cipherURL)
		if err != nil {
			return "", fmt.Errorf("parse cipher url: %w", err)
		}
		q := u.Query()
		q.Set(sp, decoded)
		u.RawQuery = q.Encode()
	default:
		return "", fmt.Errorf("format %d has no url or signatureCipher", f.Itag)
	}

	q := u.Query()
	if nval := q.Get("n"); nval != "" && playerJSURL != "" {
		if nout, err := cipher.DecipherN(ctx, httpClient, playerJSURL, nval); err == nil && nout != "" {
			q.Set("n", nout)
		}
	}
	// Ensure ratebypass for ranged requests
	if q.Get("ratebypass") == "" {
		q.Set("ratebypass", "yes")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
