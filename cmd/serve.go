package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/reconciler/internal/handlers"
	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resolution HTTP API",
		Long: `Starts an HTTP API for resolving record batches on the specified port.

POST a JSON array of raw records to /api/resolve to run a resolution
pass. Results are held in memory and can be listed at /api/batches.`,
		Example: `  # Start server on default port 8888
  reconciler serve

  # Start server on custom port with custom weights
  reconciler serve --port 3000 --config weights.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve.LoadConfig(configPath)
			if err != nil {
				return err
			}
			engine, err := resolve.New(cfg)
			if err != nil {
				return err
			}
			handler := handlers.New(engine)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/resolve", handler.HandleResolve)
			mux.HandleFunc("/api/batches", handler.HandleBatches)
			mux.HandleFunc("/api/batches/", handler.HandleBatchDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Reconciler API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config (weights, threshold, source trust)")

	return cmd
}
