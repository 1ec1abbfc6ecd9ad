package innertube

import (
	"bytes"
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/ytget/ytapi/errs"
)

// maxLoggedBody bounds the response excerpt written at trace level.
const maxLoggedBody = 2048

// Thumbnail is one entry of videoDetails.thumbnail.thumbnails.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PlayerResponse represents a response from the InnerTube /player endpoint.
type PlayerResponse struct {
	StreamingData struct {
		Formats          []any  `json:"formats"`
		AdaptiveFormats  []any  `json:"adaptiveFormats"`
		ExpiresInSeconds string `json:"expiresInSeconds"`
	} `json:"streamingData"`
	VideoDetails struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		Author           string `json:"author"`
		LengthSeconds    string `json:"lengthSeconds"`
		ViewCount        string `json:"viewCount"`
		ShortDescription string `json:"shortDescription"`
		IsLiveContent    bool   `json:"isLiveContent"`
		Thumbnail        struct {
			Thumbnails []Thumbnail `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (c *Client) clientContext(ver string) (map[string]any, string) {
	clientMap := map[string]any{
		"clientName":    c.clientName,
		"clientVersion": ver,
		"hl":            "en",
		"gl":            "US",
	}
	ua := userAgentValue
	if c.clientName == clientNameAndroid {
		ua = "com.google.android.youtube/" + ver + " (Linux; U; Android 11) gzip"
		clientMap["androidSdkVersion"] = 30
		clientMap["osName"] = "Android"
		clientMap["osVersion"] = "11"
		clientMap["userAgent"] = ua
	}
	return clientMap, ua
}

// GetPlayerResponse fetches video data for the provided video ID using the
// InnerTube /player endpoint.
func (c *Client) GetPlayerResponse(ctx context.Context, videoID string) (*PlayerResponse, error) {
	c.ensureKey(ctx, videoID)

	ver := c.ClientVersion()
	clientMap, ua := c.clientContext(ver)

	requestBody, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": clientMap,
		},
		"videoId":        videoID,
		"contentCheckOk": true,
		"racyCheckOk":    true,
	})
	if err != nil {
		return nil, err
	}

	endpoint := playerURL + "?prettyPrint=false"
	c.mu.Lock()
	if c.apiKey != "" {
		endpoint += "&key=" + url.QueryEscape(c.apiKey)
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", headerContentTypeJSON)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Referer", baseURL+"/")
	req.Header.Set("Origin", baseURL)
	if code := clientCodeFromName(c.clientName); code != "" {
		req.Header.Set("X-YouTube-Client-Name", code)
	}
	req.Header.Set("X-YouTube-Client-Version", ver)
	if visitorID := c.visitor(ctx); visitorID != "" {
		req.Header.Set(headerVisitorID, visitorID)
	}

	resp, err := c.doWithBotguardRetry(req)
	if err != nil {
		return nil, fmt.Errorf("innertube: player request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger().Debug("Player response", map[string]interface{}{
		"video_id": videoID,
		"client":   c.clientName,
		"status":   resp.StatusCode,
		"encoding": resp.Header.Get("Content-Encoding"),
	})

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("innertube: %w (HTTP %d)", errs.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("innertube: player request failed: HTTP %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("innertube: read response: %w", err)
	}
	c.logger().Trace("Player response body", map[string]interface{}{"body": excerpt(body)})

	var playerResponse PlayerResponse
	if err := json.Unmarshal(body, &playerResponse); err != nil {
		return nil, fmt.Errorf("innertube: parse response: %w", err)
	}
	return &playerResponse, nil
}

// readBody decodes the body according to Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	case "bzip2":
		reader = bzip2.NewReader(resp.Body)
	}
	return io.ReadAll(reader)
}

func excerpt(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
