// Package downloader fetches media over HTTP in ranged chunks and writes it
// to an afero filesystem.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/ytget/ytapi/internal/logger"
)

const (
	defaultChunkSizeBytes = 10 << 20 // 10MB, below the googlevideo throttling threshold
	partialFileSuffix     = ".part"
	copyBufferSizeBytes   = 32 * 1024 // 32KB

	headerRange         = "Range"
	headerContentRange  = "Content-Range"
	headerUserAgent     = "User-Agent"
	headerAccept        = "Accept"
	headerAcceptEnc     = "Accept-Encoding"
	headerAcceptLang    = "Accept-Language"
	headerCacheControl  = "Cache-Control"
	successMinHTTPCode  = 200
	successMaxHTTPCodeX = 300

	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
)

// ErrEmptyDownload is returned when the server sent no bytes.
var ErrEmptyDownload = errors.New("empty download: 0 bytes written")

// Progress holds information about download progress.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Downloader downloads media files with ranged HTTP requests and optional
// rate limiting. It is safe for concurrent use; the limiter is shared.
type Downloader struct {
	Client       *http.Client
	ProgressFunc func(Progress)

	chunkSize int64
	limiter   *rate.Limiter
	log       *logger.ComponentLogger
}

// New creates a new downloader instance with sane defaults.
// If client is nil, a default http.Client is used. rateLimitBps=0 disables limiting.
func New(client *http.Client, progressFunc func(Progress), rateLimitBps int64) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	d := &Downloader{
		Client:       client,
		ProgressFunc: progressFunc,
		chunkSize:    defaultChunkSizeBytes,
		log:          logger.WithComponent(logger.ComponentDownloader),
	}
	if rateLimitBps > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(rateLimitBps), copyBufferSizeBytes)
	}
	return d
}

// WithChunkSize overrides the size of each ranged request.
func (d *Downloader) WithChunkSize(n int64) *Downloader {
	if n > 0 {
		d.chunkSize = n
	}
	return d
}

func isGoogleVideoHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	h := strings.ToLower(u.Hostname())
	return strings.HasSuffix(h, ".googlevideo.com") || h == "googlevideo.com"
}

// parseContentRange extracts the total size from "bytes a-b/total".
// It returns -1 when the total is unknown.
func parseContentRange(v string) int64 {
	_, total, ok := strings.Cut(v, "/")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(total), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// Download fetches urlStr into outputPath on fs and returns the number of
// bytes written. Data goes to outputPath+".part" first and is renamed on
// success; the partial file is removed on failure.
func (d *Downloader) Download(ctx context.Context, fs afero.Fs, urlStr string, outputPath string) (written int64, err error) {
	tmpPath := outputPath + partialFileSuffix
	out, err := fs.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if out != nil {
			_ = out.Close()
		}
		if err != nil {
			_ = fs.Remove(tmpPath)
		}
	}()

	d.log.Debug("Starting download", map[string]interface{}{"path": outputPath})

	total := int64(-1)
	for total < 0 || written < total {
		start := written
		end := start + d.chunkSize - 1
		if total > 0 && end >= total {
			end = total - 1
		}

		resp, rerr := d.requestRange(ctx, urlStr, start, end)
		if rerr != nil {
			return written, rerr
		}

		full := resp.StatusCode != http.StatusPartialContent
		if !full {
			if t := parseContentRange(resp.Header.Get(headerContentRange)); t >= 0 {
				total = t
			}
		} else if start > 0 {
			_ = resp.Body.Close()
			return written, fmt.Errorf("server ignored range request at offset %d", start)
		}

		n, cerr := d.copy(ctx, out, resp.Body, start, total)
		_ = resp.Body.Close()
		written += n
		if cerr != nil {
			return written, cerr
		}

		if full || n == 0 {
			break
		}
		// Unknown total: a short chunk marks the end.
		if total < 0 && n < end-start+1 {
			break
		}
	}

	if written == 0 {
		return 0, ErrEmptyDownload
	}
	if total > 0 && written < total {
		return written, fmt.Errorf("incomplete download: %d of %d bytes", written, total)
	}
	if cerr := out.Close(); cerr != nil {
		return written, fmt.Errorf("close output file: %w", cerr)
	}
	out = nil
	if rerr := fs.Rename(tmpPath, outputPath); rerr != nil {
		return written, fmt.Errorf("rename output file: %w", rerr)
	}

	d.log.Info("Download completed", map[string]interface{}{
		"path":  outputPath,
		"bytes": written,
	})
	return written, nil
}

func (d *Downloader) requestRange(ctx context.Context, urlStr string, start, end int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerUserAgent, userAgentValue)
	req.Header.Set(headerAccept, "*/*")
	req.Header.Set(headerAcceptEnc, "identity")
	req.Header.Set(headerCacheControl, "no-cache")
	if !isGoogleVideoHost(urlStr) {
		req.Header.Set(headerAcceptLang, "en-US,en;q=0.9")
	}
	rangeVal := fmt.Sprintf("bytes=%d-%d", start, end)
	req.Header.Set(headerRange, rangeVal)

	d.log.Trace("Requesting range", map[string]interface{}{"range": rangeVal})

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download chunk: %w", err)
	}
	if resp.StatusCode < successMinHTTPCode || resp.StatusCode >= successMaxHTTPCodeX {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download chunk: HTTP status %d", resp.StatusCode)
	}
	return resp, nil
}

// copy streams body into out through the limiter and reports progress.
func (d *Downloader) copy(ctx context.Context, out io.Writer, body io.Reader, offset, total int64) (int64, error) {
	buf := make([]byte, copyBufferSizeBytes)
	var n int64
	for {
		m, rerr := body.Read(buf)
		if m > 0 {
			if d.limiter != nil {
				if err := d.limiter.WaitN(ctx, m); err != nil {
					return n, err
				}
			}
			if _, werr := out.Write(buf[:m]); werr != nil {
				return n, fmt.Errorf("write chunk: %w", werr)
			}
			n += int64(m)
			if d.ProgressFunc != nil {
				p := Progress{TotalSize: total, DownloadedSize: offset + n}
				if total > 0 {
					p.Percent = float64(offset+n) / float64(total) * 100
				}
				d.ProgressFunc(p)
			}
		}
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, fmt.Errorf("read response body: %w", rerr)
		}
	}
}
