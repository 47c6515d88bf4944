package domain

import (
	"context"
	"errors"
	"time"
)

// Defaults applied when the source spreadsheet omits a field.
const (
	DefaultName   = "Unnamed Turbine"
	DefaultStatus = "Unknown"
)

// ErrStoreNotConfigured is returned by operations that require persistence
// when the process was started without a catalog store. It is distinct from
// a configured-but-unreachable store, which surfaces the driver error.
var ErrStoreNotConfigured = errors.New("catalog store not configured")

// Turbine is the canonical catalog entity. Numeric fields and location are
// pointers so that "absent in the source sheet" round-trips as null rather
// than zero.
type Turbine struct {
	Name       string    `bson:"name"        json:"name"`
	Status     string    `bson:"status"      json:"status"`
	Latitude   *float64  `bson:"latitude"    json:"latitude"`
	Longitude  *float64  `bson:"longitude"   json:"longitude"`
	CapacityMW *float64  `bson:"capacity_mw" json:"capacity_mw"`
	Location   *string   `bson:"location"    json:"location"`
	ImportedAt time.Time `bson:"imported_at" json:"imported_at,omitempty"`
}

// StoredTurbine is a Turbine as persisted, carrying the store-assigned
// document identifier rendered as an opaque string.
type StoredTurbine struct {
	ID      string `json:"id"`
	Turbine `bson:",inline"`
}

// CatalogStore is the narrow persistence contract the catalog requires.
// FindByName returns (nil, nil) when no document matches.
type CatalogStore interface {
	FindByName(ctx context.Context, name string) (*StoredTurbine, error)
	UpdateByID(ctx context.Context, id string, t Turbine) error
	Insert(ctx context.Context, t Turbine) (string, error)
	List(ctx context.Context, status string) ([]StoredTurbine, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}
