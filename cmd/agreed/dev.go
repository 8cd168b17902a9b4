package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/agreed/internal/dev"
)

func devCmd(flags *globalFlags) *cobra.Command {
	var (
		addr string
		poll bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch and serve the route table",
		Long: `Run watch mode and serve the current route table over HTTP.

Endpoints:
  GET /_agreed/routes          route tree
  GET /_agreed/routes/{key}    sub-routes of a descriptor
  GET /_agreed/match?path=     descriptor and params for a URL
  GET /_agreed/models          model registry
  GET /_agreed/navs            navigation tree
  GET /_agreed/status          watch state and last build
  GET /_agreed/reload          WebSocket change notifications
  GET /metrics                 Prometheus metrics

Examples:
  agreed dev
  agreed dev --addr=:4000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Dev.Addr = addr
			}
			if poll {
				cfg.Dev.Poll = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			publisher, err := newPublisher(ctx, cfg)
			if err != nil {
				return err
			}

			server := dev.NewServer(dev.ServerOptions{
				Config:    cfg,
				Logger:    newLogger(os.Stderr, flags.verbose),
				Publisher: publisher,
				OnRebuild: reportRebuild,
			})

			info("Serving %s%s", cfg.DevURL(), dev.APIPrefix)
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from agreed.json)")
	cmd.Flags().BoolVar(&poll, "poll", false, "Poll for changes instead of using OS notifications")

	return cmd
}
