package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type permissionDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Label string             `bson:"label"`
}

// PermissionRepository reads and seeds the permissions collection.
type PermissionRepository struct {
	col *mongo.Collection
}

func NewPermissionRepository(db *mongo.Database) *PermissionRepository {
	return &PermissionRepository{col: db.Collection(collectionPermissions)}
}

func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*domain.Permission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.PermissionNotFound(id)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *PermissionRepository) FindByName(ctx context.Context, name string) (*domain.Permission, error) {
	return r.findOne(ctx, bson.M{"name": name}, name)
}

func (r *PermissionRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc permissionDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.PermissionNotFound(key)
		}
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return toPermission(&doc), nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	var docs []permissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	out := make([]*domain.Permission, 0, len(docs))
	for i := range docs {
		out = append(out, toPermission(&docs[i]))
	}
	return out, nil
}

// Ensure upserts by name. The label is only written on insert.
func (r *PermissionRepository) Ensure(ctx context.Context, p domain.Permission) (*domain.Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{"name": p.Name, "label": p.Label}}

	var doc permissionDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"name": p.Name}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ensure permission %s: %w", p.Name, err)
	}
	return toPermission(&doc), nil
}

func toPermission(doc *permissionDoc) *domain.Permission {
	return &domain.Permission{ID: doc.ID.Hex(), Name: doc.Name, Label: doc.Label}
}
