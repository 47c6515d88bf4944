// Command import runs one sheet import against the configured catalog store
// and prints the insert/update counts. It shares the server's pipeline, so
// a cron job or an operator shell can ingest a sheet without going through
// the HTTP API.
//
// Usage:
//
//	MONGO_URI=mongodb://localhost:27017 go run ./cmd/import \
//	  -sheet-url 'https://docs.google.com/spreadsheets/d/{docID}/edit?gid=0'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	mongoadapter "github.com/couchcryptid/turbine-catalog/internal/adapter/mongo"
	"github.com/couchcryptid/turbine-catalog/internal/adapter/sheets"
	"github.com/couchcryptid/turbine-catalog/internal/config"
	"github.com/couchcryptid/turbine-catalog/internal/observability"
	"github.com/couchcryptid/turbine-catalog/internal/pipeline"
)

func main() {
	sheetURL := flag.String("sheet-url", "", "Google Sheets share link or CSV export URL")
	flag.Parse()

	if *sheetURL == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*sheetURL); code != 0 {
		os.Exit(code)
	}
}

func run(sheetURL string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if cfg.MongoURI == "" {
		fmt.Fprintln(os.Stderr, "MONGO_URI is required for imports")
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := mongoadapter.Connect(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect store: %v\n", err)
		return 1
	}
	defer store.Close(ctx) //nolint:errcheck // process exits right after

	fetcher := sheets.NewClient(cfg.SheetFetchTimeout, logger)
	importer := pipeline.New(store, fetcher, nil, logger, metrics)

	result, err := importer.Run(ctx, sheetURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return 1
	}

	fmt.Printf("inserted=%d updated=%d\n", result.Inserted, result.Updated)
	return 0
}
