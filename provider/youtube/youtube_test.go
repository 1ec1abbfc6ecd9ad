package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/ytget/ytapi/errs"
	"github.com/ytget/ytapi/provider"
	"github.com/ytget/ytapi/youtube/innertube"
)

const testVideoID = "dQw4w9WgXcQ"

type fakePlayer struct {
	resp  *innertube.PlayerResponse
	err   error
	calls []string
}

func (f *fakePlayer) GetPlayerResponse(_ context.Context, videoID string) (*innertube.PlayerResponse, error) {
	f.calls = append(f.calls, videoID)
	return f.resp, f.err
}

func playerResponse(t *testing.T, mediaURL string) *innertube.PlayerResponse {
	t.Helper()
	doc := fmt.Sprintf(`{
		"playabilityStatus": {"status": "OK"},
		"videoDetails": {
			"videoId": %[2]q,
			"title": "Test: Video? <Name>",
			"author": "Channel",
			"lengthSeconds": "212",
			"viewCount": "1500000",
			"shortDescription": "About the video",
			"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/x/default.jpg", "width": 120, "height": 90}]}
		},
		"streamingData": {
			"formats": [
				{"itag": 18, "url": %[1]q, "mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "qualityLabel": "360p", "width": 640, "height": 360, "fps": 30, "contentLength": "11"}
			],
			"adaptiveFormats": [
				{"itag": 140, "url": %[1]q, "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 130000, "averageBitrate": 128000, "contentLength": "11"},
				{"itag": 251, "signatureCipher": "s=abc&url=https%%3A%%2F%%2Fexample.com", "mimeType": "audio/webm; codecs=\"opus\"", "averageBitrate": 160000}
			]
		}
	}`, mediaURL, testVideoID)
	var pr innertube.PlayerResponse
	if err := json.Unmarshal([]byte(doc), &pr); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return &pr
}

func newTestProvider(player playerClient) *Provider {
	p := New(Config{HTTPClient: &http.Client{Timeout: 5 * time.Second}})
	p.player = player
	return p
}

func mediaServer(data []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "media.mp4", time.Time{}, bytes.NewReader(data))
	}))
}

func TestFetch(t *testing.T) {
	player := &fakePlayer{resp: playerResponse(t, "https://example.com/media")}
	p := newTestProvider(player)

	v, err := p.Fetch(context.Background(), "https://youtu.be/"+testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(player.calls) != 1 || player.calls[0] != testVideoID {
		t.Errorf("player called with %v", player.calls)
	}

	m := v.Metadata
	if m.ID != testVideoID || m.Title != "Test: Video? <Name>" {
		t.Errorf("unexpected metadata %+v", m)
	}
	if m.Author == nil || *m.Author != "Channel" {
		t.Errorf("author = %v", m.Author)
	}
	if m.LengthSeconds == nil || *m.LengthSeconds != 212 {
		t.Errorf("length = %v", m.LengthSeconds)
	}
	if m.Views == nil || *m.Views != 1500000 {
		t.Errorf("views = %v", m.Views)
	}
	if m.Description == nil || *m.Description != "About the video" {
		t.Errorf("description = %v", m.Description)
	}
	if len(m.Thumbnails) != 1 || m.Thumbnails[0].Width != 120 {
		t.Errorf("thumbnails = %+v", m.Thumbnails)
	}

	if len(v.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(v.Variants))
	}
	if s, ok := v.Variant("18"); !ok || !s.Progressive {
		t.Errorf("itag 18 should be a progressive variant, got %+v", s)
	}
	if s, ok := v.Variant("140"); !ok || s.Progressive || s.ABR == nil || *s.ABR != "128kbps" {
		t.Errorf("itag 140 should be 128kbps audio, got %+v", s)
	}
}

func TestFetch_MissingOptionalFields(t *testing.T) {
	var pr innertube.PlayerResponse
	_ = json.Unmarshal([]byte(`{"playabilityStatus":{"status":"OK"},"videoDetails":{"title":"Bare"}}`), &pr)
	p := newTestProvider(&fakePlayer{resp: &pr})

	v, err := p.Fetch(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	m := v.Metadata
	if m.ID != testVideoID {
		t.Errorf("id should fall back to the requested id, got %q", m.ID)
	}
	if m.Author != nil || m.LengthSeconds != nil || m.Views != nil || m.Description != nil {
		t.Errorf("optional fields should be nil: %+v", m)
	}
	if len(v.Variants) != 0 {
		t.Errorf("expected no variants, got %d", len(v.Variants))
	}
}

func TestFetch_Errors(t *testing.T) {
	status := func(s, reason string) *innertube.PlayerResponse {
		pr := &innertube.PlayerResponse{}
		pr.PlayabilityStatus.Status = s
		pr.PlayabilityStatus.Reason = reason
		return pr
	}

	tests := []struct {
		name   string
		ref    string
		player *fakePlayer
		want   error
	}{
		{"unsupported url", "https://vimeo.com/1", &fakePlayer{}, errs.ErrUnsupportedURL},
		{"player failure", testVideoID, &fakePlayer{err: errs.ErrRateLimited}, errs.ErrRateLimited},
		{"private", testVideoID, &fakePlayer{resp: status("UNPLAYABLE", "This video is private")}, errs.ErrPrivate},
		{"age", testVideoID, &fakePlayer{resp: status("LOGIN_REQUIRED", "Sign in to confirm your age")}, errs.ErrAgeRestricted},
		{"geo", testVideoID, &fakePlayer{resp: status("ERROR", "The uploader has not made this video available in your country")}, errs.ErrGeoBlocked},
		{"unavailable", testVideoID, &fakePlayer{resp: status("ERROR", "Video unavailable")}, errs.ErrVideoUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestProvider(tt.player).Fetch(context.Background(), tt.ref)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if errs.Kind(err) != errs.KindUpstream {
				t.Errorf("error should be an upstream error, got kind %v", errs.Kind(err))
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	data := []byte("media bytes")
	srv := mediaServer(data)
	defer srv.Close()

	p := newTestProvider(&fakePlayer{resp: playerResponse(t, srv.URL+"/videoplayback")})
	v, err := p.Fetch(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	fs := afero.NewMemMapFs()
	dir := "/stage"
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := p.Materialize(context.Background(), v, 18, fs, dir, "out_18.mp4"); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}
	got, err := afero.ReadFile(fs, filepath.Join(dir, "out_18.mp4"))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("content = %q, want %q", got, data)
	}
}

func TestMaterialize_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestProvider(&fakePlayer{resp: playerResponse(t, srv.URL+"/videoplayback")})
	v, err := p.Fetch(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	fs := afero.NewMemMapFs()

	if err := p.Materialize(context.Background(), v, 22, fs, "/", "x.mp4"); !errors.Is(err, errs.ErrVariantNotFound) {
		t.Errorf("unknown itag: error = %v", err)
	}

	err = p.Materialize(context.Background(), v, 140, fs, "/", "x.m4a")
	if errs.Kind(err) != errs.KindUpstream {
		t.Errorf("HTTP 403 should surface as upstream error, got %v", err)
	}
	if ok, _ := afero.Exists(fs, "/x.m4a"); ok {
		t.Error("failed download must not leave the target file")
	}

	foreign := &provider.Video{Handle: "other"}
	if err := p.Materialize(context.Background(), foreign, 18, fs, "/", "x.mp4"); err == nil {
		t.Error("foreign handle should fail")
	}
}

func TestPlayability(t *testing.T) {
	ok := &innertube.PlayerResponse{}
	if err := playability(ok); err != nil {
		t.Errorf("empty status should be playable, got %v", err)
	}
	pr := &innertube.PlayerResponse{}
	pr.PlayabilityStatus.Status = "error"
	pr.PlayabilityStatus.Reason = "Quota exceeded"
	err := playability(pr)
	if !errors.Is(err, errs.ErrRateLimited) {
		t.Errorf("quota reason should map to rate limited, got %v", err)
	}
	if err.Error() != "rate limited: Quota exceeded" {
		t.Errorf("reason should be kept in the message, got %q", err.Error())
	}
}
