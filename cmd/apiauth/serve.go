package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cameronmore/go-apiauth/auth"
	"github.com/cameronmore/go-apiauth/config"
	"github.com/cameronmore/go-apiauth/logging"
	"github.com/cameronmore/go-apiauth/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var configPath string
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnvFile(configPath, envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "path to a .env file")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Logging, version)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialising auth stack: %w", err)
	}
	defer st.Close()

	gate := auth.NewGate(st.authenticator, cfg.Auth.ExcludedPaths, auth.WithRegistry(registry))
	srv, err := server.New(server.Deps{
		Config:    cfg,
		Logger:    logger,
		Gate:      gate,
		Directory: st.directory,
		Gatherer:  registry,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("authentication configured",
		"strategy", cfg.Strategy(),
		"session_backend", cfg.Auth.SessionBackend,
		"session_duration", cfg.SessionDuration().String(),
	)

	<-ctx.Done()
	return srv.Close()
}
