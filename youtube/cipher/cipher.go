package cipher

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/robertkrimen/otto"

	"github.com/ytget/ytapi/internal/logger"
)

const (
	userAgentValue   = "Mozilla/5.0"
	ytBase           = "https://www.youtube.com"
	playerJSURLRe    = `"jsUrl":"([^"]+)"`
	decipherFuncName = "decipher"
	ncodeFuncName    = "ncode"
	jsURLGroupIndex  = 1 // capture group index for jsUrl

	playerJSTTL = 10 * time.Minute
)

var playerJSURLRegex = regexp.MustCompile(playerJSURLRe)

type vmCacheEntry struct {
	vm    *otto.Otto
	expAt time.Time
}

// vm cache keyed by player.js URL
var (
	vmCache   = make(map[string]vmCacheEntry)
	vmCacheMu sync.Mutex
)

var log = logger.WithComponent(logger.ComponentCipher)

func getPlayerJS(ctx context.Context, httpClient *http.Client, playerJSURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playerJSURL, nil)
	if err != nil {
		return nil, NewError(ErrCodePlayerJSDownload, "build player.js request", err)
	}
	req.Header.Set("User-Agent", userAgentValue)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, NewError(ErrCodePlayerJSDownload, "download player.js", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, NewError(ErrCodePlayerJSDownload, "download player.js: "+resp.Status, nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrCodePlayerJSDownload, "read player.js", err)
	}
	return body, nil
}

// playerVM returns a private copy of the evaluated player.js for playerJSURL.
func playerVM(ctx context.Context, httpClient *http.Client, playerJSURL string) (*otto.Otto, error) {
	vmCacheMu.Lock()
	entry, ok := vmCache[playerJSURL]
	if ok && time.Now().Before(entry.expAt) {
		vm := entry.vm.Copy()
		vmCacheMu.Unlock()
		return vm, nil
	}
	vmCacheMu.Unlock()

	body, err := getPlayerJS(ctx, httpClient, playerJSURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vm := otto.New()
	if _, err := vm.Run(string(body)); err != nil {
		return nil, NewError(ErrCodeJSExecutionFailed, "run player.js", err)
	}
	log.Debug("Loaded player.js", map[string]interface{}{
		"url":      playerJSURL,
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	})

	vmCacheMu.Lock()
	vmCache[playerJSURL] = vmCacheEntry{vm: vm, expAt: time.Now().Add(playerJSTTL)}
	copied := vm.Copy()
	vmCacheMu.Unlock()
	return copied, nil
}

// purgeExpired drops cache entries past their TTL.
func purgeExpired(now time.Time) {
	vmCacheMu.Lock()
	defer vmCacheMu.Unlock()
	for k, e := range vmCache {
		if now.After(e.expAt) {
			delete(vmCache, k)
		}
	}
}

// FetchPlayerJS finds the player.js URL by requesting the provided video page URL
// and scraping the "jsUrl" field from the response.
func FetchPlayerJS(ctx context.Context, httpClient *http.Client, videoURL string) (string, error) {
	purgeExpired(time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", NewError(ErrCodePlayerJSNotFound, "build watch page request", err)
	}
	req.Header.Set("User-Agent", userAgentValue)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", NewError(ErrCodePlayerJSNotFound, "fetch watch page", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(ErrCodePlayerJSNotFound, "read watch page", err)
	}

	matches := playerJSURLRegex.FindSubmatch(body)
	if len(matches) <= jsURLGroupIndex || len(matches[jsURLGroupIndex]) == 0 {
		return "", NewError(ErrCodePlayerJSNotFound, "no jsUrl in watch page", nil)
	}

	playerJSURL := strings.ReplaceAll(string(matches[jsURLGroupIndex]), `\/`, `/`)
	if strings.HasPrefix(playerJSURL, "http") {
		return playerJSURL, nil
	}
	return ytBase + playerJSURL, nil
}

// Decipher decrypts a signature by calling decipher() from player.js.
func Decipher(ctx context.Context, httpClient *http.Client, playerJSURL string, signature string) (string, error) {
	vm, err := playerVM(ctx, httpClient, playerJSURL)
	if err != nil {
		return "", err
	}

	value, err := vm.Call(decipherFuncName, nil, signature)
	if err != nil {
		return "", NewError(ErrCodeSignatureDecipher, "call decipher", err)
	}
	result, err := value.ToString()
	if err != nil {
		return "", NewError(ErrCodeSignatureDecipher, "decipher returned a non-string", err)
	}
	return result, nil
}

// DecipherN decodes the n-parameter (throttling) if player.js contains
// ncode(). Without it the value is returned unchanged.
func DecipherN(ctx context.Context, httpClient *http.Client, playerJSURL string, nval string) (string, error) {
	vm, err := playerVM(ctx, httpClient, playerJSURL)
	if err != nil {
		return "", err
	}
	fn, err := vm.Get(ncodeFuncName)
	if err != nil || !fn.IsFunction() {
		return nval, nil
	}
	value, err := vm.Call(ncodeFuncName, nil, nval)
	if err != nil {
		return "", NewError(ErrCodeSignatureDecipher, "call ncode", err)
	}
	result, err := value.ToString()
	if err != nil {
		return "", NewError(ErrCodeSignatureDecipher, "ncode returned a non-string", err)
	}
	return result, nil
}
