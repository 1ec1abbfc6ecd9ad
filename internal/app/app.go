// Package app assembles the service from a loaded configuration.
package app

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/ytget/ytapi/config"
	"github.com/ytget/ytapi/internal/botguard"
	"github.com/ytget/ytapi/internal/logger"
	"github.com/ytget/ytapi/pkg/client"
	"github.com/ytget/ytapi/provider"
	"github.com/ytget/ytapi/provider/youtube"
	"github.com/ytget/ytapi/server"
	"github.com/ytget/ytapi/service"
	"github.com/ytget/ytapi/staging"
)

var log = logger.WithComponent(logger.ComponentApp)

// Options overrides parts of the assembly, mostly for tests.
type Options struct {
	// Fs hosts staging directories and the botguard token cache. Nil uses
	// the OS filesystem.
	Fs afero.Fs
	// Provider replaces the YouTube provider.
	Provider provider.Provider
}

// NewService builds the provider, staging area and service described by cfg.
func NewService(cfg *config.Config, opts Options) (*service.Service, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	stager := staging.New(fs, cfg.Download.TempDir, cfg.Download.DirPrefix)
	if opts.Provider != nil {
		return service.New(opts.Provider, stager), nil
	}

	hc := client.NewWith(client.Config{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		ProxyURL:  cfg.HTTP.Proxy,
	})

	pcfg := youtube.Config{
		HTTPClient:    hc.HTTPClient,
		ClientName:    cfg.Provider.ClientName,
		ClientVersion: cfg.Provider.ClientVersion,
		RateLimitBps:  cfg.RateLimitBps(),
		Botguard:      cfg.BotguardMode(),
		BotguardTTL:   cfg.Provider.BotguardTTL,
	}
	if pcfg.Botguard != botguard.Off {
		solver, cache, err := newBotguard(cfg, fs)
		if err != nil {
			return nil, err
		}
		pcfg.Solver, pcfg.Cache = solver, cache
	}

	log.Info("Service configured", map[string]interface{}{
		"client":     pcfg.ClientName,
		"botguard":   pcfg.Botguard.String(),
		"rate_limit": pcfg.RateLimitBps,
		"staging":    stager.Root(),
	})
	return service.New(youtube.New(pcfg), stager), nil
}

// newBotguard loads the solver and picks a token cache. A build without the
// solver only logs; requests then go out without attestation.
func newBotguard(cfg *config.Config, fs afero.Fs) (botguard.Solver, botguard.Cache, error) {
	solver, err := botguard.NewSolver(cfg.Provider.BotguardScript)
	if errors.Is(err, botguard.ErrUnavailable) {
		log.Warn("Botguard requested but not available in this build", map[string]interface{}{
			"mode": cfg.Provider.Botguard,
		})
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("botguard: %w", err)
	}

	if dir := cfg.Provider.BotguardCacheDir; dir != "" {
		cache, err := botguard.NewFileCache(fs, dir)
		if err != nil {
			return nil, nil, fmt.Errorf("botguard cache: %w", err)
		}
		return solver, cache, nil
	}
	return solver, botguard.NewMemoryCache(), nil
}

// NewServer builds the HTTP server for cfg around svc.
func NewServer(cfg *config.Config, svc *service.Service) *server.Server {
	return server.New(svc, server.Config{
		Addr:        cfg.Server.Addr,
		CORSOrigin:  cfg.Server.CORSOrigin,
		ReadTimeout: cfg.Server.ReadTimeout,
	})
}
