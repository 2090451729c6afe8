package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/config"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/llm"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/server"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/session"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage/sqlite"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/tts"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Rawi API server",
	Long: `Start the Rawi HTTP server with REST API and WebSocket support.

API endpoints are under /api; generated narration is served from /audio.

Examples:
  rawi serve
  rawi serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func newEngine(cfg *config.Config) *session.Engine {
	client := llm.NewCompleter(cfg.Provider.BaseURL, cfg.Provider.APIKey,
		llm.Options{
			Model:       cfg.Provider.Model,
			Temperature: cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxTokens,
		},
		llm.RetryPolicy{
			Attempts:      cfg.Retry.Attempts,
			BackoffFactor: cfg.Retry.BackoffFactor,
		},
	)
	return session.NewEngine(client)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	library, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer library.Close()

	narrator := tts.NewNarrator(tts.NewGoogleSynthesizer(), cfg.Audio.Dir)

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(cfg, newEngine(cfg), narrator, library)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	return srv.Start(port)
}
