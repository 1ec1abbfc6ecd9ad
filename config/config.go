// Package config loads settings from defaults, a config file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/ytget/ytapi/internal/botguard"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/internal/units"
	"github.com/ytget/ytapi/youtube/innertube"
)

// EnvPrefix prefixes every environment variable, e.g. YTAPI_SERVER_ADDR.
const EnvPrefix = "YTAPI"

// EnvKeyReplacer maps configuration keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config is the typed form of all settings.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		CORSOrigin      string        `mapstructure:"cors_origin"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	HTTP struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
		Proxy     string        `mapstructure:"proxy"`
	} `mapstructure:"http"`
	Provider struct {
		ClientName       string        `mapstructure:"client_name"`
		ClientVersion    string        `mapstructure:"client_version"`
		Botguard         string        `mapstructure:"botguard"`
		BotguardScript   string        `mapstructure:"botguard_script"`
		BotguardTTL      time.Duration `mapstructure:"botguard_ttl"`
		BotguardCacheDir string        `mapstructure:"botguard_cache_dir"`
	} `mapstructure:"provider"`
	Download struct {
		RateLimit string `mapstructure:"rate_limit"`
		TempDir   string `mapstructure:"temp_dir"`
		DirPrefix string `mapstructure:"dir_prefix"`
	} `mapstructure:"download"`
	Log struct {
		Level      string   `mapstructure:"level"`
		Format     string   `mapstructure:"format"`
		Components []string `mapstructure:"components"`
	} `mapstructure:"log"`
}

// New returns a viper instance with defaults and environment bindings. A nil
// fs reads config files from the OS filesystem.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}
	v.SetConfigName("ytapi")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ytapi"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.SetTypeByDefaultValue(true)
	for _, f := range Defaults {
		v.SetDefault(f.Key, f.Value)
		_ = v.BindEnv(f.Key)
	}
	return v
}

// Read loads the config file at path, or searches the default locations
// when path is empty. A missing file in the default locations is not an
// error.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	if strings.TrimSpace(c.Provider.ClientVersion) == "" && innertube.NeedsVersion(c.Provider.ClientName) {
		return fmt.Errorf("%s is required for client %q", KeyProviderClientVersion, c.Provider.ClientName)
	}
	if _, err := botguard.ParseMode(c.Provider.Botguard); err != nil {
		return fmt.Errorf("%s: %w", KeyProviderBotguard, err)
	}
	if c.Download.RateLimit != "" && units.ParseRate(c.Download.RateLimit) == 0 {
		return fmt.Errorf("%s: invalid rate %q", KeyDownloadRateLimit, c.Download.RateLimit)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%s: %w", KeyLogFormat, err)
	}
	return nil
}

// BotguardMode returns the parsed botguard mode.
func (c *Config) BotguardMode() botguard.Mode {
	m, _ := botguard.ParseMode(c.Provider.Botguard)
	return m
}

// RateLimitBps returns the download rate cap in bytes per second, 0 for none.
func (c *Config) RateLimitBps() int64 {
	return units.ParseRate(c.Download.RateLimit)
}

// LoggerConfig builds the logger configuration. Components listed in
// log.components are enabled on top of the defaults.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	if lvl, err := logger.ParseLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}
	if f, err := logger.ParseFormat(c.Log.Format); err == nil {
		lc.Format = f
	}
	for _, entry := range c.Log.Components {
		// env values arrive as one comma separated entry
		for _, name := range strings.Split(entry, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			switch name {
			case "":
			case "all":
				for comp := range lc.Components {
					lc.Components[comp] = true
				}
			default:
				lc.Components[logger.Component(name)] = true
			}
		}
	}
	return lc
}
