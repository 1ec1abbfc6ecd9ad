// Package provider defines the contract between the HTTP service and the
// component that extracts video metadata and media from the video platform.
//
// A Provider resolves a video reference into a Video once per request and can
// later write one of the video's variants to a directory. Nothing returned by
// a Provider is shared between requests.
package provider

import (
	"context"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/ytget/ytapi/types"
)

// Video is the result of resolving a video reference.
type Video struct {
	Metadata types.VideoMetadata
	Variants []types.StreamVariant
	// Handle is provider-private state needed by Materialize.
	Handle any
}

// Variant looks up a variant by the decimal form of its itag. The match is
// exact: "018" or " 18" do not find itag 18.
func (v *Video) Variant(itag string) (types.StreamVariant, bool) {
	if v == nil {
		return types.StreamVariant{}, false
	}
	return lo.Find(v.Variants, func(s types.StreamVariant) bool {
		return strconv.Itoa(s.Itag) == itag
	})
}

// Provider extracts videos and materializes their variants.
type Provider interface {
	// Fetch resolves ref. Failures are wrapped in *errs.UpstreamError.
	Fetch(ctx context.Context, ref string) (*Video, error)
	// Materialize writes the variant with the given itag into dir/filename on
	// fs. A provider may pick a different file name inside dir.
	Materialize(ctx context.Context, v *Video, itag int, fs afero.Fs, dir, filename string) error
}
