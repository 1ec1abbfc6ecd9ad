package errs

import (
	"errors"
)

var (
	// ErrVideoUnavailable indicates that the requested video cannot be accessed.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrPrivate indicates that the video is private and cannot be downloaded.
	ErrPrivate = errors.New("video is private")
	// ErrAgeRestricted indicates that the video has an age restriction.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrCipherFailed indicates failure during signature deciphering.
	ErrCipherFailed = errors.New("cipher failed")
	// ErrGeoBlocked indicates the video is not available in the current region.
	ErrGeoBlocked = errors.New("geo blocked")
	// ErrRateLimited indicates throttling or rate limiting by the remote service.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnsupportedURL indicates the reference is not a recognizable video URL or id.
	ErrUnsupportedURL = errors.New("unsupported url")

	// ErrInvalidInput indicates a missing or empty required parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVariantNotFound indicates the itag is not part of the video's variant set.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrDownloadProducedNoFile indicates materialization left the staging directory empty.
	ErrDownloadProducedNoFile = errors.New("download produced no file")
)

// UpstreamError wraps a failure of the extraction provider.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Detail returns the provider's message without the operation prefix.
func (e *UpstreamError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Upstream wraps err as an UpstreamError. Nil stays nil and an existing
// UpstreamError is returned unchanged.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

// ErrorKind classifies errors for the HTTP boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUpstream
	KindVariantNotFound
	KindNoFile
)

// Kind reports which error kind err belongs to.
func Kind(err error) ErrorKind {
	var ue *UpstreamError
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrVariantNotFound):
		return KindVariantNotFound
	case errors.Is(err, ErrDownloadProducedNoFile):
		return KindNoFile
	case errors.As(err, &ue):
		return KindUpstream
	}
	return KindInternal
}

// Detail returns the most specific message available for err.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Detail()
	}
	return err.Error()
}
