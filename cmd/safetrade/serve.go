package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/safetrade/site/internal/clock"
	"github.com/safetrade/site/internal/config"
	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/inbox"
	"github.com/safetrade/site/internal/server"
	"github.com/safetrade/site/pkg/middleware"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		port    int
		host    string
		dev     bool
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server and block until interrupted.

Examples:
  safetrade serve
  safetrade serve --port=9000 --dev
  SAFETRADE_CONTACT_BACKEND=s3 SAFETRADE_CONTACT_S3_BUCKET=inbox safetrade serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("dev") {
				cfg.Dev = dev
			}
			if backend != "" {
				cfg.Contact.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode: text logs, unfingerprinted assets")
	cmd.Flags().StringVar(&backend, "backend", "", "Contact backend: simulated, memory or s3")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := cfg.Logger(cmd.ErrOrStderr())

	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		return err
	}

	var metrics *middleware.Metrics
	if !cfg.Metrics.Disabled {
		metrics = middleware.NewMetrics(middleware.WithNamespace(cfg.Metrics.Namespace))
		metrics.Registry().MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	clk := clock.Real()
	sub, err := inbox.Open(ctx, cfg.Inbox(), clk, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		Catalog: catalog,
		Inbox:   sub,
		Clock:   clk,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.Info("safetrade starting",
		"version", version,
		"address", cfg.Addr(),
		"backend", cfg.Contact.Backend,
		"default_locale", cfg.Site.DefaultLocale,
		"dev", cfg.Dev,
	)
	return srv.Run(ctx)
}
