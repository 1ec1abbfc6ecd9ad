package main

import (
	"encoding/json"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ytget/ytapi/config"
	"github.com/ytget/ytapi/internal/app"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/service"
)

// cli carries state shared by all commands of one invocation.
type cli struct {
	fs      afero.Fs
	v       *viper.Viper
	opts    app.Options
	cfgFile string
	cfg     *config.Config
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "ytapi",
		Short:         "HTTP API for video metadata, stream listing and downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default ./ytapi.yaml, then ~/.config/ytapi/ytapi.yaml)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	lo.Must0(c.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level")))
	pf.String("log-format", "", "log format: text or json")
	lo.Must0(c.v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format")))
	pf.StringSlice("log-components", nil, "extra components to log (innertube, cipher, downloader, botguard, all)")
	lo.Must0(c.v.BindPFlag(config.KeyLogComponents, pf.Lookup("log-components")))
	pf.String("client", "", "InnerTube client name")
	lo.Must0(c.v.BindPFlag(config.KeyProviderClientName, pf.Lookup("client")))
	pf.String("client-version", "", "InnerTube client version")
	lo.Must0(c.v.BindPFlag(config.KeyProviderClientVersion, pf.Lookup("client-version")))
	pf.Duration("http-timeout", 0, "timeout of a single outbound request")
	lo.Must0(c.v.BindPFlag(config.KeyHTTPTimeout, pf.Lookup("http-timeout")))
	pf.String("proxy", "", "proxy URL for outbound requests")
	lo.Must0(c.v.BindPFlag(config.KeyHTTPProxy, pf.Lookup("proxy")))
	pf.String("rate-limit", "", "download rate cap, e.g. 2MiB/s")
	lo.Must0(c.v.BindPFlag(config.KeyDownloadRateLimit, pf.Lookup("rate-limit")))
	pf.String("temp-dir", "", "parent directory of staging directories")
	lo.Must0(c.v.BindPFlag(config.KeyDownloadTempDir, pf.Lookup("temp-dir")))

	root.AddCommand(
		c.serveCmd(),
		c.infoCmd(),
		c.streamsCmd(),
		c.downloadCmd(),
		versionCmd(),
	)
	return root
}

// setup reads configuration and installs the global logger.
func (c *cli) setup() error {
	if err := config.Read(c.v, c.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg
	logger.SetGlobalLogger(logger.New(cfg.LoggerConfig()))
	return nil
}

func (c *cli) service() (*service.Service, error) {
	opts := c.opts
	opts.Fs = c.fs
	return app.NewService(c.cfg, opts)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
