// Package mongo implements the catalog store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/couchcryptid/turbine-catalog/internal/config"
	"github.com/couchcryptid/turbine-catalog/internal/domain"
)

// Store implements domain.CatalogStore backed by a MongoDB collection.
type Store struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	coll   *mongodriver.Collection
	logger *slog.Logger
}

// turbineDoc is the persisted document shape: a Turbine plus the
// driver-assigned ObjectID.
type turbineDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	domain.Turbine `bson:",inline"`
}

// Connect establishes a client, verifies the deployment is reachable, and
// returns a Store bound to the configured database and collection.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	return &Store{
		client: client,
		db:     db,
		coll:   db.Collection(cfg.MongoCollection),
		logger: logger,
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindByName returns the stored turbine with exactly the given name, or
// (nil, nil) when none exists.
func (s *Store) FindByName(ctx context.Context, name string) (*domain.StoredTurbine, error) {
	var doc turbineDoc
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find turbine: %w", err)
	}
	stored := doc.stored()
	return &stored, nil
}

// UpdateByID replaces all data fields of the identified document. The name
// field is part of the replacement, so renames via re-import are possible
// only through a fresh insert.
func (s *Store) UpdateByID(ctx context.Context, id string, t domain.Turbine) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("parse turbine id: %w", err)
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": t})
	if err != nil {
		return fmt.Errorf("update turbine: %w", err)
	}
	return nil
}

// Insert creates a new document and returns its generated identifier.
func (s *Store) Insert(ctx context.Context, t domain.Turbine) (string, error) {
	res, err := s.coll.InsertOne(ctx, t)
	if err != nil {
		return "", fmt.Errorf("insert turbine: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// List returns stored turbines, optionally filtered by an already-normalized
// status value. An empty status returns everything.
func (s *Store) List(ctx context.Context, status string) ([]domain.StoredTurbine, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list turbines: %w", err)
	}
	defer cur.Close(ctx)

	var docs []turbineDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode turbines: %w", err)
	}

	out := make([]domain.StoredTurbine, len(docs))
	for i, d := range docs {
		out[i] = d.stored()
	}
	return out, nil
}

// CountByStatus counts documents with exactly the given status value.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("count turbines: %w", err)
	}
	return n, nil
}

// CheckReadiness pings the deployment; used by the /readyz endpoint.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// CollectionNames lists collection names in the configured database for the
// /test diagnostic endpoint.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.M{})
}

func (d turbineDoc) stored() domain.StoredTurbine {
	return domain.StoredTurbine{
		ID:      d.ID.Hex(),
		Turbine: d.Turbine,
	}
}
