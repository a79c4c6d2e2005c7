// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/outreach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the outreach pipeline as an HTTP API",
	Long: `Serve exposes search, lead management, drafting, dispatch and export
as a JSON API for the browser front end. Leads live in memory for the life
of the process. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringSlice("allowed-origin", nil, "CORS origin allowed to call the API (repeatable, overrides server.allowed_origins)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := cfg.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		sc.Addr = addr
	}
	if origins, _ := cmd.Flags().GetStringSlice("allowed-origin"); len(origins) > 0 {
		sc.AllowedOrigins = origins
	}

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("starting outreach API",
		zap.String("version", version),
		zap.String("store", string(cfg.Store.Backend)),
		zap.Strings("allowed_origins", sc.AllowedOrigins),
		zap.Bool("smtp", cfg.Mail.Host != ""),
	)
	return server.New(p, sc, logger).ListenAndServe(ctx)
}
