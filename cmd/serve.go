package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/ria/internal/config"
	"github.com/lehigh-university-libraries/ria/internal/handlers"
	"github.com/lehigh-university-libraries/ria/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built store over HTTP",
		Long: `Loads a store built by "ria build" and serves it as a read-only JSON API.

  GET /api/materials?prefix=             list keys and names
  GET /api/materials/{key}               full record
  GET /api/index/{key}?wavelength=       n and k at a wavelength (µm)`,
		Example: `  # Serve results.json on the default address :8888
  ria serve

  # Serve a parquet store on a custom address
  ria serve --store results.parquet --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return err
			}

			s, err := store.Load(cfg.Store)
			if err != nil {
				return err
			}
			handler := handlers.New(s)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/materials", handler.HandleMaterials)
			mux.HandleFunc("/api/materials/", handler.HandleMaterialDetail)
			mux.HandleFunc("/api/index/", handler.HandleMaterialIndex)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			server := &http.Server{
				Addr:              cfg.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Serving refractive index store", "addr", cfg.Addr, "store", cfg.Store, "items", s.Len())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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

	defaults := config.Defaults()
	cmd.Flags().String("store", defaults.Store, "Path to the store file")
	cmd.Flags().String("addr", defaults.Addr, "Address to listen on")

	return cmd
}
