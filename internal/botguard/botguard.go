// Package botguard obtains attestation tokens for innertube requests that
// YouTube rejects with 403.
//
// The solver is pluggable. Builds tagged `botguard` ship a goja-based solver
// that runs a user supplied script; other builds report ErrUnavailable.
package botguard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable is returned by NewSolver in builds without the botguard tag.
var ErrUnavailable = errors.New("botguard: solver not compiled in (build with -tags botguard)")

// Mode defines how attestation is used.
type Mode int

const (
	// Off never attests.
	Off Mode = iota
	// Auto attests after a 403 and retries the request once.
	Auto
	// Force attests before every player request.
	Force
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Force:
		return "force"
	}
	return "off"
}

// ParseMode accepts "off", "auto" or "force". Empty input is Off.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "false", "0":
		return Off, nil
	case "auto":
		return Auto, nil
	case "force", "on":
		return Force, nil
	}
	return Off, fmt.Errorf("botguard: unknown mode %q", s)
}

// Input carries the request characteristics an attestation is bound to.
type Input struct {
	UserAgent     string `json:"userAgent"`
	PageURL       string `json:"pageUrl"`
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorID     string `json:"visitorId"`
}

// Output is an attestation result.
type Output struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether o is past its expiry. A zero expiry never expires.
func (o Output) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// Solver produces attestation tokens.
type Solver interface {
	Attest(ctx context.Context, input Input) (Output, error)
}

// Cache stores outputs keyed by KeyFromInput.
type Cache interface {
	Get(key string) (Output, bool)
	Set(key string, value Output)
}

// KeyFromInput derives a cache key from the fields that influence the token.
func KeyFromInput(in Input) string {
	return in.UserAgent + "|" + in.ClientName + "|" + in.ClientVersion + "|" + in.VisitorID
}
