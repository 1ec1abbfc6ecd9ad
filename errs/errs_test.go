package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "ErrVideoUnavailable", err: ErrVideoUnavailable, expected: "video unavailable"},
		{name: "ErrPrivate", err: ErrPrivate, expected: "video is private"},
		{name: "ErrAgeRestricted", err: ErrAgeRestricted, expected: "age restricted"},
		{name: "ErrGeoBlocked", err: ErrGeoBlocked, expected: "geo blocked"},
		{name: "ErrInvalidInput", err: ErrInvalidInput, expected: "invalid input"},
		{name: "ErrVariantNotFound", err: ErrVariantNotFound, expected: "variant not found"},
		{name: "ErrDownloadProducedNoFile", err: ErrDownloadProducedNoFile, expected: "download produced no file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorUniqueness(t *testing.T) {
	errorList := []error{
		ErrVideoUnavailable,
		ErrPrivate,
		ErrAgeRestricted,
		ErrCipherFailed,
		ErrGeoBlocked,
		ErrRateLimited,
		ErrUnsupportedURL,
		ErrInvalidInput,
		ErrVariantNotFound,
		ErrDownloadProducedNoFile,
	}

	for i, err1 := range errorList {
		for j, err2 := range errorList {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Error %d and %d should not be equal", i, j)
			}
		}
	}
}

func TestUpstream(t *testing.T) {
	if Upstream("fetch", nil) != nil {
		t.Fatal("nil error must stay nil")
	}

	err := Upstream("fetch", ErrPrivate)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if !errors.Is(err, ErrPrivate) {
		t.Error("UpstreamError should unwrap to the cause")
	}
	if err.Error() != "fetch: video is private" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if ue.Detail() != "video is private" {
		t.Errorf("unexpected detail %q", ue.Detail())
	}

	again := Upstream("download", fmt.Errorf("wrapped: %w", err))
	if !errors.As(again, &ue) || ue.Op != "fetch" {
		t.Errorf("existing UpstreamError should be kept, got %v", again)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindInternal},
		{name: "invalid input", err: fmt.Errorf("url: %w", ErrInvalidInput), want: KindInvalidInput},
		{name: "variant", err: fmt.Errorf("itag 5: %w", ErrVariantNotFound), want: KindVariantNotFound},
		{name: "no file", err: ErrDownloadProducedNoFile, want: KindNoFile},
		{name: "upstream", err: Upstream("fetch", errors.New("boom")), want: KindUpstream},
		{name: "other", err: errors.New("disk full"), want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetail(t *testing.T) {
	if Detail(nil) != "" {
		t.Error("nil error has no detail")
	}
	if got := Detail(Upstream("fetch", errors.New("HTTP 429"))); got != "HTTP 429" {
		t.Errorf("got %q", got)
	}
	if got := Detail(errors.New("plain")); got != "plain" {
		t.Errorf("got %q", got)
	}
}
