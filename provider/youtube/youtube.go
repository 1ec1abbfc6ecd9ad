// Package youtube implements provider.Provider on top of the InnerTube
// player API.
//
// Client identity, botguard attestation and download throttling are plain
// Config values. Two Providers with different client identities can serve
// side by side in one process.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/ytget/ytapi/downloader"
	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/internal/botguard"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/pkg/client"
	"github.com/ytget/ytapi/provider"
	"github.com/ytget/ytapi/streams"
	"github.com/ytget/ytapi/types"
	"github.com/ytget/ytapi/youtube/cipher"
	"github.com/ytget/ytapi/youtube/formats"
	"github.com/ytget/ytapi/youtube/innertube"
)

const (
	// DefaultClientName and DefaultClientVersion identify the InnerTube
	// client used when Config leaves them blank.
	DefaultClientName    = "ANDROID"
	DefaultClientVersion = "20.10.38"
)

var watchURL = "https://www.youtube.com/watch?v="

// Config configures the adapter. Zero values use defaults.
type Config struct {
	HTTPClient    *http.Client
	ClientName    string
	ClientVersion string
	// RateLimitBps caps the media download rate; 0 disables the cap.
	RateLimitBps int64

	Botguard    botguard.Mode
	Solver      botguard.Solver
	Cache       botguard.Cache
	BotguardTTL time.Duration
}

type playerClient interface {
	GetPlayerResponse(ctx context.Context, videoID string) (*innertube.PlayerResponse, error)
}

// Provider fetches videos through InnerTube and downloads their formats.
type Provider struct {
	httpClient *http.Client
	player     playerClient
	dl         *downloader.Downloader
	log        *logger.ComponentLogger
}

var _ provider.Provider = (*Provider)(nil)

// handle is the provider-private part of a provider.Video.
type handle struct {
	videoID string
	formats []types.Format
}

// New builds a Provider from cfg.
func New(cfg Config) *Provider {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = client.New().HTTPClient
	}
	name := strings.TrimSpace(cfg.ClientName)
	if name == "" {
		name = DefaultClientName
	}
	ver := strings.TrimSpace(cfg.ClientVersion)
	if ver == "" && strings.EqualFold(name, DefaultClientName) {
		ver = DefaultClientVersion
	}

	it := innertube.New(hc).WithClient(name, ver)
	if cfg.Botguard != botguard.Off && cfg.Solver != nil {
		cache := cfg.Cache
		if cache == nil {
			cache = botguard.NewMemoryCache()
		}
		it.WithBotguard(cfg.Solver, cfg.Botguard, cache).WithBotguardTTL(cfg.BotguardTTL)
	}

	log := logger.WithComponent(logger.ComponentProvider)
	dl := downloader.New(hc, func(p downloader.Progress) {
		log.Trace("Download progress", map[string]interface{}{
			"downloaded": p.DownloadedSize,
			"total":      p.TotalSize,
		})
	}, cfg.RateLimitBps)

	return &Provider{httpClient: hc, player: it, dl: dl, log: log}
}

// Fetch resolves ref into metadata and the list of stream variants.
func (p *Provider) Fetch(ctx context.Context, ref string) (*provider.Video, error) {
	id, err := provider.ExtractVideoID(ref)
	if err != nil {
		return nil, errs.Upstream("resolve video", err)
	}

	pr, err := p.player.GetPlayerResponse(ctx, id)
	if err != nil {
		return nil, errs.Upstream("fetch player response", err)
	}
	if err := playability(pr); err != nil {
		return nil, errs.Upstream("check playability", err)
	}

	raw := formats.ParseFormats(pr)
	p.log.Debug("Video resolved", map[string]interface{}{
		"video_id": id,
		"title":    pr.VideoDetails.Title,
		"formats":  len(raw),
	})

	return &provider.Video{
		Metadata: metadata(id, pr),
		Variants: streams.FromFormats(raw),
		Handle:   &handle{videoID: id, formats: raw},
	}, nil
}

// Materialize resolves the format's final URL and downloads it to
// dir/filename.
func (p *Provider) Materialize(ctx context.Context, v *provider.Video, itag int, fs afero.Fs, dir, filename string) error {
	if v == nil {
		return errors.New("youtube: nil video")
	}
	h, ok := v.Handle.(*handle)
	if !ok {
		return errors.New("youtube: video was not fetched by this provider")
	}
	f, ok := lo.Find(h.formats, func(f types.Format) bool { return f.Itag == itag })
	if !ok {
		return fmt.Errorf("itag %d: %w", itag, errs.ErrVariantNotFound)
	}

	var playerJSURL string
	if formats.NeedsPlayerJS(f) {
		u, err := cipher.FetchPlayerJS(ctx, p.httpClient, watchURL+h.videoID)
		if err != nil {
			return errs.Upstream("fetch player.js", err)
		}
		playerJSURL = u
	}
	mediaURL, err := formats.ResolveFormatURL(ctx, p.httpClient, f, playerJSURL)
	if err != nil {
		return errs.Upstream("resolve format url", err)
	}

	target := filepath.Join(dir, filename)
	p.log.Info("Downloading format", map[string]interface{}{
		"video_id": h.videoID,
		"itag":     itag,
		"target":   target,
	})
	n, err := p.dl.Download(ctx, fs, mediaURL, target)
	if err != nil {
		return errs.Upstream("download", err)
	}
	p.log.Debug("Format downloaded", map[string]interface{}{"itag": itag, "bytes": n})
	return nil
}

// playability maps a non-playable status to the matching sentinel error.
func playability(pr *innertube.PlayerResponse) error {
	status := strings.ToUpper(pr.PlayabilityStatus.Status)
	reason := strings.ToLower(pr.PlayabilityStatus.Reason)
	var err error
	switch status {
	case "", "OK":
		return nil
	case "ERROR":
		switch {
		case strings.Contains(reason, "geograph"), strings.Contains(reason, "available in your country"):
			err = errs.ErrGeoBlocked
		case strings.Contains(reason, "rate limit"), strings.Contains(reason, "quota"):
			err = errs.ErrRateLimited
		default:
			err = errs.ErrVideoUnavailable
		}
	case "LOGIN_REQUIRED":
		if strings.Contains(reason, "private") {
			err = errs.ErrPrivate
		} else {
			err = errs.ErrAgeRestricted
		}
	case "UNPLAYABLE":
		if strings.Contains(reason, "private") {
			err = errs.ErrPrivate
		} else {
			err = errs.ErrVideoUnavailable
		}
	case "LIVE_STREAM_OFFLINE":
		err = errs.ErrVideoUnavailable
	default:
		return nil
	}
	if pr.PlayabilityStatus.Reason != "" {
		return fmt.Errorf("%w: %s", err, pr.PlayabilityStatus.Reason)
	}
	return err
}

func metadata(id string, pr *innertube.PlayerResponse) types.VideoMetadata {
	d := pr.VideoDetails
	if d.VideoID != "" {
		id = d.VideoID
	}
	return types.VideoMetadata{
		ID:            id,
		Title:         d.Title,
		Author:        optionalString(d.Author),
		LengthSeconds: optionalCount(d.LengthSeconds),
		Views:         optionalCount(d.ViewCount),
		Description:   optionalString(d.ShortDescription),
		Thumbnails: lo.Map(d.Thumbnail.Thumbnails, func(t innertube.Thumbnail, _ int) types.Thumbnail {
			return types.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height}
		}),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return lo.ToPtr(s)
}

// optionalCount parses a non-negative decimal count; anything else is nil.
func optionalCount(s string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return lo.ToPtr(n)
}
