package streams

import (
	"github.com/samber/lo"

	"github.com/ytget/ytapi/internal/units"
	"github.com/ytget/ytapi/types"
)

// Descriptor is the JSON representation of a variant.
type Descriptor struct {
	Itag          int     `json:"itag"`
	MimeType      string  `json:"mime_type"`
	Type          string  `json:"type"`
	Resolution    *string `json:"resolution"`
	FPS           *int    `json:"fps"`
	ABR           *string `json:"abr"`
	IsProgressive bool    `json:"is_progressive"`
	Filesize      string  `json:"filesize"`
	IsAdaptive    bool    `json:"is_adaptive"`
	MimeSubtype   string  `json:"mime_subtype"`
}

// Describe converts a variant into its JSON representation.
func Describe(v types.StreamVariant) Descriptor {
	return Descriptor{
		Itag:          v.Itag,
		MimeType:      v.MimeType,
		Type:          string(v.Kind),
		Resolution:    v.Resolution,
		FPS:           v.FPS,
		ABR:           v.ABR,
		IsProgressive: v.Progressive,
		Filesize:      units.FormatBytes(v.Size),
		IsAdaptive:    v.Adaptive,
		MimeSubtype:   v.MimeSubtype,
	}
}

// DescribeAll converts variants preserving their order.
func DescribeAll(variants []types.StreamVariant) []Descriptor {
	return lo.Map(variants, func(v types.StreamVariant, _ int) Descriptor {
		return Describe(v)
	})
}
