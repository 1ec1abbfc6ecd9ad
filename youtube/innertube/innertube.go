// Package innertube talks to YouTube's internal player API.
package innertube

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ytget/ytapi/internal/botguard"
	"github.com/ytget/ytapi/internal/logger"
)

var (
	baseURL   = "https://www.youtube.com"
	playerURL = "https://www.youtube.com/youtubei/v1/player"
)

const (
	userAgentValue        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	headerContentTypeJSON = "application/json"
	headerBotguard        = "x-goog-ext-123-botguard"
	headerVisitorID       = "x-goog-visitor-id"
	clientNameWEB         = "WEB"
	clientNameAndroid     = "ANDROID"
	defaultClientVersion  = "2.20250312.04.00"
	defaultAndroidVersion = "20.10.38"
	fallbackClientVersion = "2.0"
	visitorIDMaxAge       = 10 * time.Hour
	keyRetryAfter         = 5 * time.Minute
	visitorRetryAfter     = 5 * time.Minute
)

var (
	apiKeyRe    = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)
	clientVerRe = regexp.MustCompile(`"INNERTUBE_CLIENT_VERSION":"([^"]+)"`)
)

// clientCodeFromName returns X-YouTube-Client-Name numeric code for known clients
func clientCodeFromName(name string) string {
	switch strings.ToUpper(name) {
	case "WEB":
		return "1"
	case "MWEB":
		return "2"
	case "ANDROID":
		return "3"
	case "IOS":
		return "5"
	case "TVHTML5":
		return "7"
	case "WEB_EMBEDDED_PLAYER":
		return "56"
	case "WEB_CREATOR":
		return "62"
	case "WEB_REMIX":
		return "67"
	case "TVHTML5_SIMPLY":
		return "75"
	case "TVHTML5_SIMPLY_EMBEDDED_PLAYER":
		return "85"
	default:
		return ""
	}
}

// Client for interacting with the YouTube InnerTube API. A Client is safe
// for concurrent use; the scraped API key and visitor id are shared.
type Client struct {
	HTTPClient *http.Client

	clientName string
	clientVer  string

	mu         sync.Mutex
	apiKey     string
	scrapedVer string
	keyTried   time.Time
	visitorID  struct {
		value   string
		updated time.Time
		tried   time.Time
	}

	bg struct {
		solver botguard.Solver
		mode   botguard.Mode
		cache  botguard.Cache
		ttl    time.Duration
	}

	log *logger.ComponentLogger
}

// New creates a WEB InnerTube client. A nil httpClient gets a tuned default.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				DisableCompression:    true,
			},
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		HTTPClient: httpClient,
		clientName: clientNameWEB,
		log:        logger.WithComponent(logger.ComponentInnerTube),
	}
}

// WithClient overrides InnerTube client name/version to shape playback URLs.
// Blank values keep the current setting.
func (c *Client) WithClient(name, version string) *Client {
	if strings.TrimSpace(name) != "" {
		c.clientName = strings.ToUpper(strings.TrimSpace(name))
	}
	if strings.TrimSpace(version) != "" {
		c.clientVer = strings.TrimSpace(version)
	}
	return c
}

// WithBotguard configures an attestation solver and mode. A nil solver
// disables attestation regardless of mode.
func (c *Client) WithBotguard(solver botguard.Solver, mode botguard.Mode, cache botguard.Cache) *Client {
	c.bg.solver = solver
	c.bg.mode = mode
	c.bg.cache = cache
	return c
}

// WithBotguardTTL sets the lifetime applied to tokens without an expiry.
func (c *Client) WithBotguardTTL(ttl time.Duration) *Client {
	c.bg.ttl = ttl
	return c
}

// ClientName returns the configured client identity.
func (c *Client) ClientName() string { return c.clientName }

// ClientVersion returns the version sent with player requests.
func (c *Client) ClientVersion() string {
	if c.clientVer != "" {
		return c.clientVer
	}
	c.mu.Lock()
	scraped := c.scrapedVer
	c.mu.Unlock()
	if c.clientName == clientNameWEB {
		if scraped != "" {
			return scraped
		}
		return defaultClientVersion
	}
	if c.clientName == clientNameAndroid {
		return defaultAndroidVersion
	}
	return fallbackClientVersion
}

// NeedsVersion reports whether the named client has no usable built-in
// version, so a version must be configured for it.
func NeedsVersion(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", clientNameWEB, clientNameAndroid:
		return false
	}
	return true
}

func (c *Client) logger() *logger.ComponentLogger {
	if c.log == nil {
		c.log = logger.WithComponent(logger.ComponentInnerTube)
	}
	return c.log
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgentValue)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")
}

// ensureKey scrapes the API key and web client version. Failure is not
// fatal: the player endpoint also answers keyless requests. One caller
// scrapes at a time; the others go on without waiting, and a failed attempt
// is not repeated within keyRetryAfter.
func (c *Client) ensureKey(ctx context.Context, videoID string) {
	c.mu.Lock()
	if c.apiKey != "" || (!c.keyTried.IsZero() && time.Since(c.keyTried) < keyRetryAfter) {
		c.mu.Unlock()
		return
	}
	c.keyTried = time.Now()
	c.mu.Unlock()

	key, ver := c.scrapeKey(ctx, videoID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if key != "" {
		c.apiKey = key
	}
	if ver != "" && c.scrapedVer == "" {
		c.scrapedVer = ver
	}
	if c.apiKey == "" {
		if ctx.Err() != nil {
			// canceled callers do not count as a failed scrape
			c.keyTried = time.Time{}
			return
		}
		c.logger().Warn("InnerTube API key not found, continuing without key")
	}
}

// scrapeKey looks for the API key and client version on the watch page and
// the home page. It does not touch shared state.
func (c *Client) scrapeKey(ctx context.Context, videoID string) (key, ver string) {
	sources := []string{baseURL + "/watch?v=" + videoID, baseURL}
	for _, source := range sources {
		if key != "" {
			break
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			continue
		}
		setBrowserHeaders(req)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			c.logger().Debug("Key source failed", map[string]interface{}{"source": source, "error": err.Error()})
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			continue
		}

		if m := apiKeyRe.FindSubmatch(body); len(m) == 2 {
			key = string(m[1])
		}
		if ver == "" {
			if m := clientVerRe.FindSubmatch(body); len(m) == 2 {
				ver = string(m[1])
			}
		}
	}
	return key, ver
}

// visitor returns the current visitor id, refreshing it when stale. While
// one caller refreshes, the others get the previous value. Errors are
// logged and yield the previous (possibly empty) id.
func (c *Client) visitor(ctx context.Context) string {
	c.mu.Lock()
	current := c.visitorID.value
	if current != "" && time.Since(c.visitorID.updated) <= visitorIDMaxAge {
		c.mu.Unlock()
		return current
	}
	if !c.visitorID.tried.IsZero() && time.Since(c.visitorID.tried) < visitorRetryAfter {
		c.mu.Unlock()
		return current
	}
	c.visitorID.tried = time.Now()
	c.mu.Unlock()

	value, err := c.refreshVisitorID(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			c.visitorID.tried = time.Time{}
		}
		c.logger().Debug("Visitor ID refresh failed", map[string]interface{}{"error": err.Error()})
		return c.visitorID.value
	}
	c.visitorID.value = value
	c.visitorID.updated = time.Now()
	return value
}

// refreshVisitorID fetches a new visitor ID from YouTube's main page.
func (c *Client) refreshVisitorID(ctx context.Context) (string, error) {
	const sep = "\nytcfg.set("

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}
	setBrowserHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", errors.New("visitor ID: unexpected status " + resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	_, rest, found := strings.Cut(string(data), sep)
	if !found {
		return "", errors.New("visitor ID not found in YouTube response")
	}

	var value struct {
		InnertubeContext struct {
			Client struct {
				VisitorData string `json:"visitorData"`
			} `json:"client"`
		} `json:"INNERTUBE_CONTEXT"`
	}
	if err := json.NewDecoder(strings.NewReader(rest)).Decode(&value); err != nil {
		return "", err
	}
	if value.InnertubeContext.Client.VisitorData == "" {
		return "", errors.New("visitor ID empty in YouTube response")
	}
	return strings.ReplaceAll(value.InnertubeContext.Client.VisitorData, "%3D", "="), nil
}
