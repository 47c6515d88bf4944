// Package pipeline orchestrates the sheet import: fetch, parse, reconcile.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/turbine-catalog/internal/domain"
	"github.com/couchcryptid/turbine-catalog/internal/observability"
)

// SheetFetcher resolves a share link and returns the raw CSV text.
type SheetFetcher interface {
	FetchCSV(ctx context.Context, shareURL string) (string, error)
}

// EventPublisher emits a catalog-change event for a reconciled record.
type EventPublisher interface {
	PublishUpsert(ctx context.Context, action string, rec domain.StoredTurbine) error
}

// Upsert actions reported to the event publisher.
const (
	ActionInserted = "inserted"
	ActionUpdated  = "updated"
)

// Result reports how many records an import inserted and updated.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Importer runs the import pipeline against the catalog store. The store may
// be nil when the process runs without persistence; the events publisher may
// be nil when change events are disabled.
type Importer struct {
	store   domain.CatalogStore
	fetcher SheetFetcher
	events  EventPublisher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Importer with the given collaborators and observability.
func New(store domain.CatalogStore, fetcher SheetFetcher, events EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Importer {
	return &Importer{
		store:   store,
		fetcher: fetcher,
		events:  events,
		logger:  logger,
		metrics: metrics,
	}
}

// Run imports the spreadsheet behind shareURL, upserting each row by name.
// Records are reconciled in row order; duplicate names within one import are
// processed row-by-row, so the last occurrence's values persist and earlier
// duplicates of an inserted name each count as updates.
//
// The store-configured check happens before any row is touched, so a
// misconfigured process never produces partial writes. A store error
// mid-sequence, however, aborts the import with earlier rows already
// committed; writes are not buffered or retried.
func (i *Importer) Run(ctx context.Context, shareURL string) (Result, error) {
	if i.store == nil {
		i.metrics.ImportsTotal.WithLabelValues("store_error").Inc()
		return Result{}, domain.ErrStoreNotConfigured
	}

	start := time.Now()

	fetchStart := time.Now()
	rawText, err := i.fetcher.FetchCSV(ctx, shareURL)
	if err != nil {
		i.metrics.ImportsTotal.WithLabelValues("fetch_error").Inc()
		return Result{}, err
	}
	i.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())

	records := domain.ParseTurbineCSV(rawText)

	var result Result
	for _, rec := range records {
		action, err := i.reconcile(ctx, rec)
		if err != nil {
			i.metrics.ImportsTotal.WithLabelValues("store_error").Inc()
			return Result{}, err
		}
		if action == ActionInserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	i.metrics.ImportsTotal.WithLabelValues("success").Inc()
	i.metrics.RowsInserted.Add(float64(result.Inserted))
	i.metrics.RowsUpdated.Add(float64(result.Updated))
	i.metrics.ImportDuration.Observe(time.Since(start).Seconds())

	i.logger.Info("sheet import complete",
		"rows", len(records),
		"inserted", result.Inserted,
		"updated", result.Updated,
		"duration", time.Since(start),
	)
	return result, nil
}

// reconcile looks up an existing record by name and either fully replaces
// its fields or inserts a new document.
func (i *Importer) reconcile(ctx context.Context, rec domain.Turbine) (string, error) {
	existing, err := i.store.FindByName(ctx, rec.Name)
	if err != nil {
		return "", fmt.Errorf("reconcile %q: %w", rec.Name, err)
	}

	var stored domain.StoredTurbine
	action := ActionInserted

	if existing != nil {
		if err := i.store.UpdateByID(ctx, existing.ID, rec); err != nil {
			return "", fmt.Errorf("reconcile %q: %w", rec.Name, err)
		}
		stored = domain.StoredTurbine{ID: existing.ID, Turbine: rec}
		action = ActionUpdated
	} else {
		id, err := i.store.Insert(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("reconcile %q: %w", rec.Name, err)
		}
		stored = domain.StoredTurbine{ID: id, Turbine: rec}
	}

	i.publish(ctx, action, stored)
	return action, nil
}

// publish is fire-and-forget: a broker hiccup must not fail the import.
func (i *Importer) publish(ctx context.Context, action string, rec domain.StoredTurbine) {
	if i.events == nil {
		return
	}
	if err := i.events.PublishUpsert(ctx, action, rec); err != nil {
		i.logger.Warn("publish upsert event failed",
			"action", action,
			"name", rec.Name,
			"error", err,
		)
	}
}
