package config

import (
	"time"
)

// Keys of every configuration field.
const (
	KeyServerAddr            = "server.addr"
	KeyServerCORSOrigin      = "server.cors_origin"
	KeyServerReadTimeout     = "server.read_timeout"
	KeyServerShutdownTimeout = "server.shutdown_timeout"

	KeyHTTPTimeout   = "http.timeout"
	KeyHTTPUserAgent = "http.user_agent"
	KeyHTTPProxy     = "http.proxy"

	KeyProviderClientName       = "provider.client_name"
	KeyProviderClientVersion    = "provider.client_version"
	KeyProviderBotguard         = "provider.botguard"
	KeyProviderBotguardScript   = "provider.botguard_script"
	KeyProviderBotguardTTL      = "provider.botguard_ttl"
	KeyProviderBotguardCacheDir = "provider.botguard_cache_dir"

	KeyDownloadRateLimit = "download.rate_limit"
	KeyDownloadTempDir   = "download.temp_dir"
	KeyDownloadDirPrefix = "download.dir_prefix"

	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogComponents = "log.components"
)

// Field is a configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Defaults lists every field in display order.
var Defaults = []Field{
	{KeyServerAddr, ":5000", "Listen address of the HTTP server"},
	{KeyServerCORSOrigin, "*", "Value of Access-Control-Allow-Origin"},
	{KeyServerReadTimeout, 30 * time.Second, "Maximum duration for reading a request"},
	{KeyServerShutdownTimeout, 10 * time.Second, "Grace period for in-flight requests on shutdown"},

	{KeyHTTPTimeout, 30 * time.Second, "Timeout of a single outbound request"},
	{KeyHTTPUserAgent, "", "User-Agent of outbound requests, empty for the built-in one"},
	{KeyHTTPProxy, "", "Proxy URL for outbound requests"},

	{KeyProviderClientName, "ANDROID", "InnerTube client name (ANDROID, WEB, IOS, ...)"},
	{KeyProviderClientVersion, "20.10.38", "InnerTube client version, required unless the client is WEB or ANDROID"},
	{KeyProviderBotguard, "off", "Botguard attestation mode: off, auto or force"},
	{KeyProviderBotguardScript, "", "Path of the botguard solver script"},
	{KeyProviderBotguardTTL, time.Duration(0), "Token lifetime when the solver reports none"},
	{KeyProviderBotguardCacheDir, "", "Directory for cached botguard tokens, empty keeps them in memory"},

	{KeyDownloadRateLimit, "", "Download rate cap such as 2MiB/s, empty for none"},
	{KeyDownloadTempDir, "", "Parent directory of staging directories, empty for the OS temp dir"},
	{KeyDownloadDirPrefix, "ytapi_dl_", "Name prefix of staging directories"},

	{KeyLogLevel, "info", "Log level: trace, debug, info, warn or error"},
	{KeyLogFormat, "text", "Log format: text or json"},
	{KeyLogComponents, []string{}, "Extra components to log (innertube, cipher, downloader, botguard)"},
}
