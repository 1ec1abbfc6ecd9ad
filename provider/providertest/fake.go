// Package providertest provides a deterministic in-memory provider.Provider
// for tests.
package providertest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/provider"
	"github.com/ytget/ytapi/types"
)

// Fake serves fixed videos keyed by reference. Content maps an itag to the
// bytes Materialize writes; a missing entry writes "itag-<n>".
type Fake struct {
	Videos  map[string]*provider.Video
	Content map[int][]byte

	// FetchErr and MaterializeErr, when set, are returned wrapped in an
	// UpstreamError.
	FetchErr       error
	MaterializeErr error
	// WriteAs overrides the file name Materialize writes, as a provider that
	// ignores the requested name would. SkipWrite leaves the directory empty.
	WriteAs   string
	SkipWrite bool

	mu           sync.Mutex
	fetched      []string
	materialized []int
	dirs         []string
}

// New returns a Fake that knows the given videos by reference.
func New(videos map[string]*provider.Video) *Fake {
	return &Fake{Videos: videos, Content: map[int][]byte{}}
}

// Fetch returns a copy of the video registered for ref.
func (f *Fake) Fetch(_ context.Context, ref string) (*provider.Video, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, ref)
	f.mu.Unlock()

	if f.FetchErr != nil {
		return nil, errs.Upstream("fetch", f.FetchErr)
	}
	v, ok := f.Videos[ref]
	if !ok {
		return nil, errs.Upstream("fetch", fmt.Errorf("%w: %s", errs.ErrUnsupportedURL, ref))
	}
	out := *v
	out.Variants = append([]types.StreamVariant(nil), v.Variants...)
	return &out, nil
}

// Materialize writes the configured content for itag into dir.
func (f *Fake) Materialize(_ context.Context, v *provider.Video, itag int, fs afero.Fs, dir, filename string) error {
	f.mu.Lock()
	f.materialized = append(f.materialized, itag)
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()

	if f.MaterializeErr != nil {
		return errs.Upstream("download", f.MaterializeErr)
	}
	if !lo.ContainsBy(v.Variants, func(s types.StreamVariant) bool { return s.Itag == itag }) {
		return fmt.Errorf("itag %d: %w", itag, errs.ErrVariantNotFound)
	}
	if f.SkipWrite {
		return nil
	}
	name := filename
	if f.WriteAs != "" {
		name = f.WriteAs
	}
	data, ok := f.Content[itag]
	if !ok {
		data = []byte(fmt.Sprintf("itag-%d", itag))
	}
	return afero.WriteFile(fs, filepath.Join(dir, name), data, 0o644)
}

// Fetched returns the references passed to Fetch so far.
func (f *Fake) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// Materialized returns the itags passed to Materialize so far.
func (f *Fake) Materialized() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.materialized...)
}

// Dirs returns the staging directories passed to Materialize so far.
func (f *Fake) Dirs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dirs...)
}

// SampleVideo returns a video with a progressive 360p variant (itag 18), an
// adaptive 1080p video variant (itag 137) and a 128kbps audio variant
// (itag 140). Variants are listed audio first so ranking is observable.
func SampleVideo() *provider.Video {
	return &provider.Video{
		Metadata: types.VideoMetadata{
			ID:            "dQw4w9WgXcQ",
			Title:         "Test: Video? <Name>",
			Author:        lo.ToPtr("Channel"),
			LengthSeconds: lo.ToPtr(int64(212)),
			Views:         lo.ToPtr(int64(1500000)),
			Description:   lo.ToPtr("About the video"),
			Thumbnails: []types.Thumbnail{
				{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", Width: 120, Height: 90},
			},
		},
		Variants: []types.StreamVariant{
			{
				Itag: 140, MimeType: "audio/mp4", MimeSubtype: "mp4", Kind: types.KindAudio,
				ABR: lo.ToPtr("128kbps"), Adaptive: true, Size: lo.ToPtr(int64(3_400_000)),
			},
			{
				Itag: 137, MimeType: "video/mp4", MimeSubtype: "mp4", Kind: types.KindVideo,
				Resolution: lo.ToPtr("1080p"), FPS: lo.ToPtr(30), Adaptive: true,
			},
			{
				Itag: 18, MimeType: "video/mp4", MimeSubtype: "mp4", Kind: types.KindVideo,
				Resolution: lo.ToPtr("360p"), FPS: lo.ToPtr(30), ABR: lo.ToPtr("96kbps"),
				Progressive: true, Size: lo.ToPtr(int64(1536)),
			},
		},
	}
}
