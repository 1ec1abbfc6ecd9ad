package streams

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ytget/ytapi/internal/mimeext"
	"github.com/ytget/ytapi/types"
)

var (
	heightRe = regexp.MustCompile(`([0-9]{2,4})p`)
	codecsRe = regexp.MustCompile(`codecs="([^"]*)"`)
)

// progressiveABR holds the audio bitrate of the muxed itags that still
// appear in player responses. The player API does not report it separately.
var progressiveABR = map[int]string{
	17: "24kbps",
	18: "96kbps",
	22: "192kbps",
	36: "32kbps",
	43: "128kbps",
}

var audioCodecPrefixes = []string{"mp4a", "opus", "vorbis", "ac-3", "ec-3", "flac"}

// FromFormat derives a variant from a raw format.
func FromFormat(f types.Format) types.StreamVariant {
	base := mimeext.Base(f.MimeType)
	kind := types.KindVideo
	if strings.HasPrefix(base, "audio/") {
		kind = types.KindAudio
	}

	progressive := f.Muxed || (kind == types.KindVideo && carriesAudio(f.MimeType))

	v := types.StreamVariant{
		Itag:        f.Itag,
		MimeType:    base,
		MimeSubtype: mimeext.Subtype(f.MimeType),
		Kind:        kind,
		Progressive: progressive,
		Adaptive:    !progressive,
	}

	if kind == types.KindVideo {
		if res := resolution(f); res != "" {
			v.Resolution = lo.ToPtr(res)
		}
		if f.FPS > 0 {
			v.FPS = lo.ToPtr(f.FPS)
		}
	}

	switch {
	case kind == types.KindAudio:
		bitrate := f.AverageBitrate
		if bitrate <= 0 {
			bitrate = f.Bitrate
		}
		if bitrate > 0 {
			v.ABR = lo.ToPtr(strconv.Itoa(int(math.Round(float64(bitrate)/1000))) + "kbps")
		}
	case progressive:
		if abr, ok := progressiveABR[f.Itag]; ok {
			v.ABR = lo.ToPtr(abr)
		}
	}

	if f.Size > 0 {
		v.Size = lo.ToPtr(f.Size)
	}
	return v
}

// FromFormats derives variants for all formats. Later duplicates of an itag
// are dropped.
func FromFormats(formats []types.Format) []types.StreamVariant {
	unique := lo.UniqBy(formats, func(f types.Format) int { return f.Itag })
	return lo.Map(unique, func(f types.Format, _ int) types.StreamVariant {
		return FromFormat(f)
	})
}

// resolution returns "NNNp" from the quality label, falling back to the
// frame height.
func resolution(f types.Format) string {
	if m := heightRe.FindStringSubmatch(f.Quality); len(m) == 2 {
		return m[1] + "p"
	}
	if f.Height > 0 {
		return strconv.Itoa(f.Height) + "p"
	}
	return ""
}

func carriesAudio(mime string) bool {
	m := codecsRe.FindStringSubmatch(strings.ToLower(mime))
	if len(m) != 2 {
		return false
	}
	codecs := lo.Map(strings.Split(m[1], ","), func(c string, _ int) string {
		return strings.TrimSpace(c)
	})
	if len(codecs) < 2 {
		return false
	}
	return lo.SomeBy(codecs, func(c string) bool {
		return lo.SomeBy(audioCodecPrefixes, func(p string) bool { return strings.HasPrefix(c, p) })
	})
}
