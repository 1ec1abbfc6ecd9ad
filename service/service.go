// Package service implements the request-scoped operations behind the HTTP
// API: metadata lookup, ranked stream listing and the download proxy.
//
// A Service holds no per-request state. Every download stages its file in a
// directory of its own that is released before Download returns.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/internal/mimeext"
	"github.com/ytget/ytapi/internal/sanitize"
	"github.com/ytget/ytapi/provider"
	"github.com/ytget/ytapi/staging"
	"github.com/ytget/ytapi/streams"
	"github.com/ytget/ytapi/types"
)

var (
	errMissingURL  = fmt.Errorf("%w: missing parameter 'url'", errs.ErrInvalidInput)
	errMissingItag = fmt.Errorf("%w: missing parameter 'itag'", errs.ErrInvalidInput)
)

// Info is the /info document.
type Info struct {
	Title       string            `json:"title"`
	Author      *string           `json:"author"`
	Length      *int64            `json:"length"`
	Views       *int64            `json:"views"`
	Description *string           `json:"description"`
	Thumbnails  []types.Thumbnail `json:"thumbnails"`
	VideoID     string            `json:"video_id"`
}

// StreamList is the /streams document.
type StreamList struct {
	Title   string               `json:"title"`
	VideoID string               `json:"video_id"`
	Streams []streams.Descriptor `json:"streams"`
}

// Attachment is a staged file handed to a Download callback. Content is only
// valid during the callback.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Content     io.ReadSeeker
}

// Service ties a provider to a staging area.
type Service struct {
	provider provider.Provider
	stager   *staging.Stager
	log      *logger.ComponentLogger
}

// New creates a Service. A nil stager stages under the OS temp directory.
func New(p provider.Provider, stager *staging.Stager) *Service {
	if stager == nil {
		stager = staging.New(nil, "", "")
	}
	return &Service{
		provider: p,
		stager:   stager,
		log:      logger.WithComponent(logger.ComponentService),
	}
}

func (s *Service) fetch(ctx context.Context, ref string) (*provider.Video, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errMissingURL
	}
	v, err := s.provider.Fetch(ctx, ref)
	if err != nil {
		s.log.Warn("Provider fetch failed", map[string]interface{}{"url": ref, "error": err.Error()})
		return nil, errs.Upstream("fetch", err)
	}
	return v, nil
}

// Metadata returns the /info document for ref.
func (s *Service) Metadata(ctx context.Context, ref string) (*Info, error) {
	v, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	m := v.Metadata
	thumbs := m.Thumbnails
	if thumbs == nil {
		thumbs = []types.Thumbnail{}
	}
	return &Info{
		Title:       m.Title,
		Author:      m.Author,
		Length:      m.LengthSeconds,
		Views:       m.Views,
		Description: m.Description,
		Thumbnails:  thumbs,
		VideoID:     m.ID,
	}, nil
}

// Streams returns the /streams document for ref with variants ranked most
// preferred first.
func (s *Service) Streams(ctx context.Context, ref string) (*StreamList, error) {
	v, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &StreamList{
		Title:   v.Metadata.Title,
		VideoID: v.Metadata.ID,
		Streams: streams.DescribeAll(streams.Rank(v.Variants)),
	}, nil
}

// Download materializes the variant identified by itag into a fresh staging
// directory and passes the resulting file to deliver. The directory is
// removed on every path out of Download; removal failures are only logged.
func (s *Service) Download(ctx context.Context, ref, itag string, deliver func(*Attachment) error) error {
	if strings.TrimSpace(ref) == "" {
		return errMissingURL
	}
	if strings.TrimSpace(itag) == "" {
		return errMissingItag
	}

	v, err := s.fetch(ctx, ref)
	if err != nil {
		return err
	}
	variant, ok := v.Variant(itag)
	if !ok {
		return fmt.Errorf("itag %s: %w", itag, errs.ErrVariantNotFound)
	}

	dir, err := s.stager.Acquire()
	if err != nil {
		return err
	}
	defer dir.Release()

	name := sanitize.AttachmentNameInt(v.Metadata.Title, variant.Itag, mimeext.ExtFromMime(variant.MimeType))
	if err := s.provider.Materialize(ctx, v, variant.Itag, dir.Fs(), dir.Path(), name); err != nil {
		return errs.Upstream("download", err)
	}

	path, err := dir.Resolve(name)
	if err != nil {
		return err
	}
	f, err := dir.Fs().Open(path)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}

	s.log.Info("Delivering download", map[string]interface{}{
		"video_id": v.Metadata.ID,
		"itag":     variant.Itag,
		"name":     name,
		"bytes":    fi.Size(),
	})
	return deliver(&Attachment{
		Name:        name,
		ContentType: variant.MimeType,
		Size:        fi.Size(),
		ModTime:     fi.ModTime(),
		Content:     f,
	})
}
