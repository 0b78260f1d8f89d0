package serve

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribed/internal/api/server"
	"scribed/internal/app"
	"scribed/internal/config"
)

var cfg *config.Config

var host string
var port string

// Configure hands the loaded environment configuration to the command.
func Configure(c *config.Config) {
	cfg = c
	if host == "" {
		host = cfg.HTTPHost
	}
	if port == "" {
		port = cfg.HTTPPort
	}
}

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "listen host (defaults to HTTP_HOST)")
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (defaults to HTTP_PORT)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Serves the v1 API for transcription jobs, LLM operations, the usage ledger
and quota checks, plus /health and /metrics. Shuts down gracefully on
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		srv := server.NewServer(server.Config{
			Host:         host,
			Port:         port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			Environment:  cfg.Environment,
		}, application.Container, logger)

		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Printf("received %v, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
