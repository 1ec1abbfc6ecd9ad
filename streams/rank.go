package streams

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ytget/ytapi/types"
)

// ResolutionValue parses "720p" into 720. Anything else is 0, including a
// bare "720".
func ResolutionValue(res *string) int {
	if res == nil {
		return 0
	}
	digits, ok := strings.CutSuffix(*res, "p")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// BitrateValue parses "128kbps" into 128. Anything else is 0.
func BitrateValue(abr *string) int {
	if abr == nil {
		return 0
	}
	digits, ok := strings.CutSuffix(*abr, "kbps")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// sortKey flattens a variant into the tuple the ordering compares.
type sortKey struct {
	nonProgressive int
	audio          int
	resolution     int
	bitrate        int
	itag           int
}

func keyOf(v types.StreamVariant) sortKey {
	k := sortKey{itag: v.Itag}
	if v.Progressive {
		k.resolution = ResolutionValue(v.Resolution)
		k.bitrate = BitrateValue(v.ABR)
		return k
	}
	k.nonProgressive = 1
	switch v.Kind {
	case types.KindVideo:
		k.resolution = ResolutionValue(v.Resolution)
	case types.KindAudio:
		k.audio = 1
		k.bitrate = BitrateValue(v.ABR)
	default:
		k.resolution = ResolutionValue(v.Resolution)
		k.bitrate = BitrateValue(v.ABR)
	}
	return k
}

// Compare orders a before b when it returns a negative number.
func Compare(a, b types.StreamVariant) int {
	ka, kb := keyOf(a), keyOf(b)
	switch {
	case ka.nonProgressive != kb.nonProgressive:
		return ka.nonProgressive - kb.nonProgressive
	case ka.audio != kb.audio:
		return ka.audio - kb.audio
	case ka.resolution != kb.resolution:
		return kb.resolution - ka.resolution
	case ka.bitrate != kb.bitrate:
		return kb.bitrate - ka.bitrate
	}
	return ka.itag - kb.itag
}

// Rank returns a sorted copy of variants, most preferred first. The input is
// left untouched.
func Rank(variants []types.StreamVariant) []types.StreamVariant {
	out := slices.Clone(variants)
	if out == nil {
		out = []types.StreamVariant{}
	}
	slices.SortStableFunc(out, Compare)
	return out
}
