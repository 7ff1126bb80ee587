package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/canvas-engine/internal/api"
	"github.com/ajitpratap0/canvas-engine/internal/engine"
)

func serveCmd() *cobra.Command {
	var load string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng := engine.New(logger, nil, nil, engineOptions()...)
			if load != "" {
				data, err := readInput(load)
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				if err := eng.LoadJSON(data); err != nil {
					return fmt.Errorf("serve: loading initial batch: %w", err)
				}
			}

			gen := newGenerator(logger)
			if gen == nil {
				logger.Warn("ANTHROPIC_API_KEY not set; POST /v1/generate will return 503")
			}

			srv := api.NewServer(eng, gen, logger, cfg.API.AuthToken)

			if cfg.API.AuthToken == "" {
				logger.Warn("HTTP API: auth is DISABLED; set CANVAS_ENGINE_API_AUTH_TOKEN or cfg.api.auth_token for production use")
			}

			httpSrv := &http.Server{
				Addr:              cfg.API.ListenAddr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP API server starting", "addr", cfg.API.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
					errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("shutting down")
			case startErr := <-errCh:
				if startErr != nil {
					return startErr
				}
				return nil
			}

			const shutdownTimeout = 10 * time.Second
			if shutdownErr := api.Shutdown(httpSrv, shutdownTimeout); shutdownErr != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", shutdownErr)
			}

			// Drain the errCh in case ListenAndServe returned after Shutdown.
			if startErr := <-errCh; startErr != nil {
				return startErr
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&load, "load", "", "record batch file to load at startup")
	return cmd
}
