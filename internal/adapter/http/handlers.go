package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/turbine-catalog/internal/adapter/sheets"
	"github.com/couchcryptid/turbine-catalog/internal/domain"
	"github.com/couchcryptid/turbine-catalog/internal/pipeline"
)

// ImportRunner runs the sheet import pipeline.
type ImportRunner interface {
	Run(ctx context.Context, shareURL string) (pipeline.Result, error)
}

// Diagnostics reports store health for the /readyz and /test endpoints.
type Diagnostics interface {
	CheckReadiness(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
}

// API holds the handlers for the catalog routes. The store and diagnostics
// may be nil when the process runs without persistence; affected endpoints
// then answer with the not-configured error per request.
type API struct {
	importer ImportRunner
	store    domain.CatalogStore
	diag     Diagnostics
	logger   *slog.Logger
}

// NewAPI wires the route handlers to their collaborators.
func NewAPI(importer ImportRunner, store domain.CatalogStore, diag Diagnostics, logger *slog.Logger) *API {
	return &API{
		importer: importer,
		store:    store,
		diag:     diag,
		logger:   logger,
	}
}

func (a *API) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "turbine catalog service"})
}

func (a *API) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello from the catalog API"})
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	sheetURL := r.URL.Query().Get("sheet_url")
	if sheetURL == "" {
		writeError(w, http.StatusBadRequest, "sheet_url query parameter is required")
		return
	}

	result, err := a.importer.Run(r.Context(), sheetURL)
	if err != nil {
		a.writeImportError(w, sheetURL, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeImportError maps pipeline failures to caller-facing responses. Bad
// links and upstream fetch failures are the caller's problem; everything
// else is ours.
func (a *API) writeImportError(w http.ResponseWriter, sheetURL string, err error) {
	var statusErr *sheets.StatusError
	switch {
	case errors.Is(err, sheets.ErrInvalidSheetURL):
		writeError(w, http.StatusBadRequest, "Invalid Google Sheets URL")
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to fetch sheet CSV: %d", statusErr.StatusCode))
	case errors.Is(err, domain.ErrStoreNotConfigured):
		writeError(w, http.StatusInternalServerError, "Database not configured")
	default:
		a.logger.Error("sheet import failed", "sheet_url", sheetURL, "error", err)
		writeError(w, http.StatusInternalServerError, "Import failed")
	}
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusInternalServerError, "Database not configured")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		status = domain.TitleCase(status)
	}

	turbines, err := a.store.List(r.Context(), status)
	if err != nil {
		a.logger.Error("list turbines failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list turbines")
		return
	}
	if turbines == nil {
		turbines = []domain.StoredTurbine{}
	}
	writeJSON(w, http.StatusOK, turbines)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusInternalServerError, "Database not configured")
		return
	}

	stats := struct {
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
		Unknown  int64 `json:"unknown"`
	}{}

	for _, c := range []struct {
		status string
		dest   *int64
	}{
		{"Active", &stats.Active},
		{"Inactive", &stats.Inactive},
		{"Unknown", &stats.Unknown},
	} {
		n, err := a.store.CountByStatus(r.Context(), c.status)
		if err != nil {
			a.logger.Error("count turbines failed", "status", c.status, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute stats")
			return
		}
		*c.dest = n
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDiagnostics reports whether the store is configured and reachable,
// including a sample of collection names when it is.
func (a *API) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Backend          string   `json:"backend"`
		StoreConfigured  bool     `json:"store_configured"`
		ConnectionStatus string   `json:"connection_status"`
		Collections      []string `json:"collections"`
	}{
		Backend:          "running",
		ConnectionStatus: "not configured",
		Collections:      []string{},
	}

	if a.diag != nil {
		resp.StoreConfigured = true
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.diag.CheckReadiness(ctx); err != nil {
			resp.ConnectionStatus = "unavailable: " + err.Error()
		} else {
			resp.ConnectionStatus = "connected"
			if names, err := a.diag.CollectionNames(ctx); err == nil {
				if len(names) > 10 {
					names = names[:10]
				}
				resp.Collections = names
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.diag == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  domain.ErrStoreNotConfigured.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.diag.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

// writeError emits the {"detail": ...} error shape used across the API.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
