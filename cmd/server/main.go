/*
main.go - HTTP server entry point

PURPOSE:
  Serves invoices over HTTP. Handles configuration, dependency injection,
  and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and layered configuration
  2. Build the zap logger
  3. Open the record repository (CSV files or SQLite)
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  --port         HTTP server port (default: 8080)
  --backend      csv or sqlite (default: csv)
  --db           SQLite database path (default: invoices.db)
                 Use ":memory:" together with --seed for a throwaway database
  --seed         Refill the SQLite database from the CSV files on startup
  --config       YAML config file (default: ./invoice.yaml if present)
  --log-level    debug, info, warn or error
  --log-format   console or json

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close the repository
  4. Exit

EXAMPLES:
  # Serve the sample CSV files
  ./server

  # Serve from SQLite, seeded from the CSV files
  ./server --backend=sqlite --db=./data/invoices.db --seed

ENVIRONMENT:
  INVOICE_SERVER_PORT, INVOICE_BACKEND, INVOICE_SQLITE_PATH, INVOICE_LOG_LEVEL, ...
  A .env file in the working directory is loaded first.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/open.go: Repository selection
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/warp/meter-invoice/api"
	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/config"
	"github.com/warp/meter-invoice/logging"
	"github.com/warp/meter-invoice/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Flags
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	configFile := fs.String("config", "", "YAML config file")
	fs.Int("port", 0, "HTTP server port")
	fs.String("backend", "", "Record backend: csv or sqlite")
	fs.String("db", "", "SQLite database path")
	fs.Bool("seed", false, "Seed the SQLite database from the CSV files")
	fs.String("customer-file", "", "Customer CSV file")
	fs.String("values-file", "", "Meter readings CSV file")
	fs.String("log-level", "", "Log level")
	fs.String("log-format", "", "Log format: console or json")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize store
	repo, closeRepo, err := store.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open records", zap.Error(err), zap.String("backend", cfg.Backend))
	}
	defer closeRepo()

	handler := api.NewHandler(billing.NewEngine(repo), logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("backend", cfg.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
