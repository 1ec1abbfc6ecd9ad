package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ytget/ytapi/config"
	"github.com/ytget/ytapi/internal/app"
	"github.com/ytget/ytapi/internal/logger"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address (default :5000)")
	lo.Must0(c.v.BindPFlag(config.KeyServerAddr, f.Lookup("addr")))
	f.String("cors-origin", "", "Access-Control-Allow-Origin value")
	lo.Must0(c.v.BindPFlag(config.KeyServerCORSOrigin, f.Lookup("cors-origin")))
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	log := logger.WithComponent(logger.ComponentApp)

	svc, err := c.service()
	if err != nil {
		return err
	}
	srv := app.NewServer(c.cfg, svc)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received", map[string]interface{}{"grace": c.cfg.Server.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
