package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second
	appName        = "identity-api"
)

// Config holds the connection settings for the identity database.
type Config struct {
	URI      string
	Database string
	// Timeout bounds connect plus the initial ping. Zero means 10s.
	Timeout time.Duration
}

func (c Config) clientOptions() *options.ClientOptions {
	return options.Client().ApplyURI(c.URI).SetAppName(appName)
}

// Connect opens a client, pings the primary and hands back the configured
// database alongside the client so the caller can disconnect it.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	wait := cfg.Timeout
	if wait <= 0 {
		wait = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("mongo %s: %w", cfg.Database, err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo %s: ping: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}

// Collection names.
const (
	collectionUsers          = "users"
	collectionRoles          = "roles"
	collectionPermissions    = "permissions"
	collectionRoleUser       = "role_user"
	collectionPermissionRole = "permission_role"
)

// EnsureIndexes creates the unique indexes the repositories rely on. The
// association collections get a compound unique index so that attaching the
// same pair twice hits a duplicate key instead of inserting a second row.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		collectionRoles: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "label", Value: 1}}, Options: unique},
		},
		collectionPermissions: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		collectionRoleUser: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
		},
		collectionPermissionRole: {
			{Keys: bson.D{{Key: "role_id", Value: 1}, {Key: "permission_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "permission_id", Value: 1}}},
		},
	}

	for coll, indexes := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// objectIDs parses hex IDs, silently skipping malformed ones.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
