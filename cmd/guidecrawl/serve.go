package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/api"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the restaurant database over a read-only HTTP API",
		Long: `Serve exposes the restaurant database as JSON over HTTP until interrupted.

Endpoints:
  GET /api/cities
  GET /api/cuisines
  GET /api/cities/{city}/restaurants
  GET /api/cuisines/{cuisine}/restaurants
  GET /api/restaurants/{name}
  GET /api/stats
  GET /healthz
  GET /metrics    Prometheus metrics

Examples:
  guidecrawl serve
  guidecrawl serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addStorageFlags(cmd)
	cmd.Flags().StringP("addr", "a", api.DefaultAddr, "Listen address")
	cmd.Flags().Duration("shutdown-timeout", api.DefaultShutdownTimeout,
		"Time allowed for in-flight requests on shutdown")

	return cmd
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	shutdownTimeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	db, err := openQueryDB(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	srv := api.NewServer(db,
		api.WithLogger(logger),
		api.WithShutdownTimeout(shutdownTimeout),
	)

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on http://%s\n", db.Path(), addr)
	return srv.ListenAndServe(ctx, addr)
}
