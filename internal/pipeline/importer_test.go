package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/turbine-catalog/internal/domain"
	"github.com/couchcryptid/turbine-catalog/internal/observability"
	"github.com/couchcryptid/turbine-catalog/internal/pipeline"
)

// fakeStore is an in-memory domain.CatalogStore for pipeline tests.
type fakeStore struct {
	docs      map[string]domain.StoredTurbine // keyed by id
	nextID    int
	findErr   error
	insertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]domain.StoredTurbine)}
}

func (s *fakeStore) FindByName(_ context.Context, name string) (*domain.StoredTurbine, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, d := range s.docs {
		if d.Name == name {
			found := d
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateByID(_ context.Context, id string, t domain.Turbine) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.docs[id] = domain.StoredTurbine{ID: id, Turbine: t}
	return nil
}

func (s *fakeStore) Insert(_ context.Context, t domain.Turbine) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.nextID++
	id := fmt.Sprintf("id-%d", s.nextID)
	s.docs[id] = domain.StoredTurbine{ID: id, Turbine: t}
	return id, nil
}

func (s *fakeStore) List(_ context.Context, status string) ([]domain.StoredTurbine, error) {
	var out []domain.StoredTurbine
	for _, d := range s.docs {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, d := range s.docs {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeFetcher returns canned CSV text for any share URL.
type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) FetchCSV(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

// recordedEvent captures one PublishUpsert call.
type recordedEvent struct {
	Action string
	Name   string
}

type fakePublisher struct {
	events []recordedEvent
}

func (p *fakePublisher) PublishUpsert(_ context.Context, action string, rec domain.StoredTurbine) error {
	p.events = append(p.events, recordedEvent{Action: action, Name: rec.Name})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newImporter(store domain.CatalogStore, fetcher pipeline.SheetFetcher, events pipeline.EventPublisher) *pipeline.Importer {
	return pipeline.New(store, fetcher, events, testLogger(), observability.NewMetricsForTesting())
}

const sampleCSV = "name,status,lat,lng,capacity_mw\nT1,active,10.5,20.1,2.5\n"

func TestImporter_Run_InsertsNewRecords(t *testing.T) {
	store := newFakeStore()
	imp := newImporter(store, &fakeFetcher{text: sampleCSV}, nil)

	result, err := imp.Run(context.Background(), "https://docs.google.com/spreadsheets/d/abc/edit")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Inserted: 1, Updated: 0}, result)

	stored, err := store.FindByName(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Active", stored.Status)
	require.NotNil(t, stored.Latitude)
	assert.Equal(t, 10.5, *stored.Latitude)
}

func TestImporter_Run_SecondImportUpdates(t *testing.T) {
	store := newFakeStore()
	imp := newImporter(store, &fakeFetcher{text: sampleCSV}, nil)

	first, err := imp.Run(context.Background(), "sheet/d/abc")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Inserted: 1, Updated: 0}, first)

	changed := "name,status,lat,lng,capacity_mw\nT1,inactive,10.5,20.1,2.5\n"
	imp = newImporter(store, &fakeFetcher{text: changed}, nil)

	second, err := imp.Run(context.Background(), "sheet/d/abc")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Inserted: 0, Updated: 1}, second)

	stored, err := store.FindByName(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Inactive", stored.Status)
	assert.Len(t, store.docs, 1)
}

func TestImporter_Run_DuplicateNamesLastWriteWins(t *testing.T) {
	store := newFakeStore()
	csv := "name,capacity_mw\nT1,1.0\nT1,2.0\n"
	imp := newImporter(store, &fakeFetcher{text: csv}, nil)

	result, err := imp.Run(context.Background(), "sheet/d/abc")
	require.NoError(t, err)
	// First occurrence inserts, the duplicate in the same import updates it.
	assert.Equal(t, pipeline.Result{Inserted: 1, Updated: 1}, result)

	stored, err := store.FindByName(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.CapacityMW)
	assert.Equal(t, 2.0, *stored.CapacityMW)
	assert.Len(t, store.docs, 1)
}

func TestImporter_Run_StoreNotConfigured(t *testing.T) {
	imp := newImporter(nil, &fakeFetcher{text: sampleCSV}, nil)

	_, err := imp.Run(context.Background(), "sheet/d/abc")
	require.ErrorIs(t, err, domain.ErrStoreNotConfigured)
}

func TestImporter_Run_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("boom")
	imp := newImporter(newFakeStore(), &fakeFetcher{err: fetchErr}, nil)

	_, err := imp.Run(context.Background(), "sheet/d/abc")
	require.ErrorIs(t, err, fetchErr)
}

func TestImporter_Run_StoreErrorAborts(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("write refused")
	imp := newImporter(store, &fakeFetcher{text: sampleCSV}, nil)

	_, err := imp.Run(context.Background(), "sheet/d/abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "T1")
}

func TestImporter_Run_PublishesUpsertEvents(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	csv := "name\nT1\nT2\nT1\n"
	imp := newImporter(store, &fakeFetcher{text: csv}, pub)

	result, err := imp.Run(context.Background(), "sheet/d/abc")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{Inserted: 2, Updated: 1}, result)

	require.Len(t, pub.events, 3)
	assert.Equal(t, recordedEvent{Action: pipeline.ActionInserted, Name: "T1"}, pub.events[0])
	assert.Equal(t, recordedEvent{Action: pipeline.ActionInserted, Name: "T2"}, pub.events[1])
	assert.Equal(t, recordedEvent{Action: pipeline.ActionUpdated, Name: "T1"}, pub.events[2])
}

func TestImporter_Run_EmptySheet(t *testing.T) {
	imp := newImporter(newFakeStore(), &fakeFetcher{text: "name,status\n"}, nil)

	result, err := imp.Run(context.Background(), "sheet/d/abc")
	require.NoError(t, err)
	assert.Equal(t, pipeline.Result{}, result)
}
