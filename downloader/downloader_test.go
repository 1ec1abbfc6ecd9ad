package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// makeServer serves data with Range support and counts requests.
func makeServer(data []byte, requests *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}
		http.ServeContent(w, r, "video.mp4", time.Time{}, bytes.NewReader(data))
	}))
}

func TestDownload_Chunked(t *testing.T) {
	data := testData(100_000)
	var requests int32
	srv := makeServer(data, &requests)
	defer srv.Close()

	fs := afero.NewMemMapFs()
	var last Progress
	d := New(srv.Client(), func(p Progress) { last = p }, 0).WithChunkSize(30_000)

	n, err := d.Download(context.Background(), fs, srv.URL, "/dl/out.mp4")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("written = %d, want %d", n, len(data))
	}
	got, err := afero.ReadFile(fs, "/dl/out.mp4")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("content mismatch")
	}
	if ok, _ := afero.Exists(fs, "/dl/out.mp4"+partialFileSuffix); ok {
		t.Error("partial file should be renamed")
	}
	if requests != 4 {
		t.Errorf("expected 4 ranged requests, got %d", requests)
	}
	if last.TotalSize != int64(len(data)) || last.DownloadedSize != int64(len(data)) || last.Percent != 100 {
		t.Errorf("unexpected final progress %+v", last)
	}
}

func TestDownload_ServerIgnoresRange(t *testing.T) {
	data := testData(5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	n, err := New(srv.Client(), nil, 0).WithChunkSize(1000).Download(context.Background(), fs, srv.URL, "/out.bin")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("written = %d", n)
	}
}

func TestDownload_Errors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		fs := afero.NewMemMapFs()
		_, err := New(srv.Client(), nil, 0).Download(context.Background(), fs, srv.URL, "/out.mp4")
		if err == nil || !strings.Contains(err.Error(), "403") {
			t.Fatalf("expected 403 error, got %v", err)
		}
		if ok, _ := afero.Exists(fs, "/out.mp4"+partialFileSuffix); ok {
			t.Error("partial file should be removed on failure")
		}
		if ok, _ := afero.Exists(fs, "/out.mp4"); ok {
			t.Error("output should not exist on failure")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		_, err := New(srv.Client(), nil, 0).Download(context.Background(), afero.NewMemMapFs(), srv.URL, "/out.mp4")
		if !errors.Is(err, ErrEmptyDownload) {
			t.Fatalf("expected ErrEmptyDownload, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		srv := makeServer(testData(1000), nil)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := New(srv.Client(), nil, 0).Download(ctx, afero.NewMemMapFs(), srv.URL, "/out.mp4"); err == nil {
			t.Fatal("expected error for canceled context")
		}
	})

	t.Run("read only filesystem", func(t *testing.T) {
		srv := makeServer(testData(1000), nil)
		defer srv.Close()

		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		if _, err := New(srv.Client(), nil, 0).Download(context.Background(), fs, srv.URL, "/out.mp4"); err == nil {
			t.Fatal("expected error for read only filesystem")
		}
	})
}

func TestDownload_RateLimited(t *testing.T) {
	data := testData(3 * copyBufferSizeBytes)
	srv := makeServer(data, nil)
	defer srv.Close()

	// The burst covers one buffer; the other two need about half a second.
	d := New(srv.Client(), nil, copyBufferSizeBytes*4)
	start := time.Now()
	if _, err := d.Download(context.Background(), afero.NewMemMapFs(), srv.URL, "/out.mp4"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("rate limit not applied, took %v", elapsed)
	}
}

func TestParseContentRange(t *testing.T) {
	tests := map[string]int64{
		"bytes 0-1/1000000": 1000000,
		"bytes 0-99/*":      -1,
		"":                  -1,
		"bytes 0-1/abc":     -1,
	}
	for in, want := range tests {
		if got := parseContentRange(in); got != want {
			t.Errorf("parseContentRange(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestIsGoogleVideoHost(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://googlevideo.com/video.mp4", true},
		{"https://r1---sn-abc.googlevideo.com/videoplayback", true},
		{"https://r1---sn-abc.googlevideo.com:443/videoplayback", true},
		{"https://youtube.com/watch", false},
		{"https://notgooglevideo.com/x", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		if got := isGoogleVideoHost(tt.url); got != tt.expected {
			t.Errorf("isGoogleVideoHost(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}
