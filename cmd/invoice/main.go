/*
main.go - Command line invoice generator

PURPOSE:
  Computes one customer's invoice for one month and writes the text
  report report_<id>_<month>.txt.

COMMAND-LINE FLAGS:
  --id             Customer ID (required)
  -y, --year       Year (required)
  -m, --month      Month 1-12 (required)
  --customer-file  Customer CSV (default: data/customers.csv)
  --values-file    Meter readings CSV (default: data/meter_values.csv)
  --report-dir     Output directory (default: .)
  --backend        csv or sqlite (default: csv)
  --db             SQLite database path when --backend=sqlite
  --config         YAML config file (default: ./invoice.yaml if present)
  --log-level      debug, info, warn or error
  --log-format     console or json

ENVIRONMENT:
  A .env file in the working directory is loaded first. Every setting can
  be given as INVOICE_<KEY>, e.g. INVOICE_CUSTOMER_FILE.

EXAMPLES:
  ./invoice --id 12345 -y 2021 -m 3
  ./invoice --id 12345 -y 2021 -m 3 --report-dir ./out --log-format json

EXIT STATUS:
  0 when the report was written, 1 on any error (the error is logged).
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/config"
	"github.com/warp/meter-invoice/logging"
	"github.com/warp/meter-invoice/report"
	"github.com/warp/meter-invoice/store"
	"go.uber.org/zap"
)

// request is what the command was asked to produce.
type request struct {
	CustomerID string
	Period     billing.BillingPeriod
}

func main() {
	_ = godotenv.Load()

	req, cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := generate(ctx, cfg, req, logger); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

// parseArgs reads the flags and the layered configuration they override.
func parseArgs(args []string) (request, *config.Config, error) {
	fs := pflag.NewFlagSet("invoice", pflag.ContinueOnError)
	id := fs.String("id", "", "Customer ID")
	year := fs.IntP("year", "y", 0, "Year")
	month := fs.IntP("month", "m", 0, "Month")
	configFile := fs.String("config", "", "YAML config file")
	fs.String("customer-file", "", "Customer CSV file")
	fs.String("values-file", "", "Meter readings CSV file")
	fs.String("report-dir", "", "Directory for the report file")
	fs.String("backend", "", "Record backend: csv or sqlite")
	fs.String("db", "", "SQLite database path")
	fs.String("log-level", "", "Log level")
	fs.String("log-format", "", "Log format: console or json")

	if err := fs.Parse(args); err != nil {
		return request{}, nil, err
	}

	var missing []error
	for _, name := range []string{"id", "year", "month"} {
		if !fs.Changed(name) {
			missing = append(missing, fmt.Errorf("flag --%s is required", name))
		}
	}
	if len(missing) > 0 {
		return request{}, nil, errors.Join(missing...)
	}

	period, err := billing.NewBillingPeriod(*year, *month)
	if err != nil {
		return request{}, nil, err
	}

	cfg, err := config.Load(*configFile, fs)
	if err != nil {
		return request{}, nil, err
	}
	return request{CustomerID: *id, Period: period}, cfg, nil
}

// generate computes the invoice and writes its report. The outcome is
// logged either way; the returned path is empty on error.
func generate(ctx context.Context, cfg *config.Config, req request, logger *zap.Logger) (string, error) {
	log := logger.With(
		zap.String("customer_id", req.CustomerID),
		zap.Stringer("period", req.Period),
	)

	repo, closeRepo, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Error("open records", zap.Error(err))
		return "", err
	}
	defer closeRepo()

	inv, err := billing.NewEngine(repo).Invoice(ctx, req.CustomerID, req.Period)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	path, err := report.WriteFile(cfg.ReportDir, inv)
	if err != nil {
		log.Error("write report", zap.Error(err))
		return "", err
	}

	log.Info("invoice written",
		zap.String("path", path),
		zap.Stringer("consumption", inv.Consumption),
		zap.String("total", inv.TotalPrice.StringFixed(2)),
	)
	return path, nil
}
