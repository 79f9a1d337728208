package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type roleDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Label     string             `bson:"label"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type permissionRoleDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RoleID       primitive.ObjectID `bson:"role_id"`
	PermissionID primitive.ObjectID `bson:"permission_id"`
}

// RoleRepository stores roles and the permission_role association.
type RoleRepository struct {
	roles           *mongo.Collection
	permissions     *mongo.Collection
	permissionRoles *mongo.Collection
	roleUsers       *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		roles:           db.Collection(collectionRoles),
		permissions:     db.Collection(collectionPermissions),
		permissionRoles: db.Collection(collectionPermissionRole),
		roleUsers:       db.Collection(collectionRoleUser),
	}
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.RoleNotFound(id)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": name}, name)
}

func (r *RoleRepository) FindByLabel(ctx context.Context, label string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"label": label}, label)
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDoc
	if err := r.roles.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.RoleNotFound(key)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return r.withPermissions(ctx, &doc)
}

func (r *RoleRepository) List(ctx context.Context, offset, limit int) ([]*domain.Role, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.roles.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.roles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	var docs []roleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode roles: %w", err)
	}

	out := make([]*domain.Role, 0, len(docs))
	for i := range docs {
		role, err := r.withPermissions(ctx, &docs[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, role)
	}
	return out, total, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := roleDoc{
		Name:      role.Name,
		Label:     role.Label,
		CreatedAt: role.CreatedAt.UTC(),
		UpdatedAt: role.UpdatedAt.UTC(),
	}
	res, err := r.roles.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRoleNotCreated, err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toRole(&doc, nil), nil
}

func (r *RoleRepository) Update(ctx context.Context, id string, changes domain.RoleChanges) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.RoleNotFound(id)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf(set, "name", changes.Name)
	setIf(set, "label", changes.Label)

	uctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.roles.UpdateOne(uctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRoleNotUpdated, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.RoleNotFound(id)
	}
	return r.FindByID(ctx, id)
}

// Delete removes the role together with its permission_role and role_user rows.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.RoleNotFound(id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.roles.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRoleNotDeleted, err)
	}
	if res.DeletedCount == 0 {
		return domain.RoleNotFound(id)
	}
	if _, err := r.permissionRoles.DeleteMany(ctx, bson.M{"role_id": oid}); err != nil {
		return fmt.Errorf("%w: detach permissions: %v", domain.ErrRoleNotDeleted, err)
	}
	if _, err := r.roleUsers.DeleteMany(ctx, bson.M{"role_id": oid}); err != nil {
		return fmt.Errorf("%w: detach users: %v", domain.ErrRoleNotDeleted, err)
	}
	return nil
}

func (r *RoleRepository) AttachPermission(ctx context.Context, roleID, permissionID string) error {
	rid, pid, err := pairIDs(roleID, permissionID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.permissionRoles.InsertOne(ctx, permissionRoleDoc{RoleID: rid, PermissionID: pid})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("attach permission: %w", err)
	}
	return nil
}

func (r *RoleRepository) DetachPermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	rid, pid, err := pairIDs(roleID, permissionID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.permissionRoles.DeleteOne(ctx, bson.M{"role_id": rid, "permission_id": pid})
	if err != nil {
		return false, fmt.Errorf("detach permission: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *RoleRepository) PermissionNames(ctx context.Context, roleIDs []string) ([]string, error) {
	oids := objectIDs(roleIDs)
	if len(oids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	links, err := r.links(ctx, bson.M{"role_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	names, err := r.permissionNames(ctx, links)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(links))
	for _, l := range links {
		if n, ok := names[l.PermissionID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// withPermissions loads the permission names of doc in grant order.
func (r *RoleRepository) withPermissions(ctx context.Context, doc *roleDoc) (*domain.Role, error) {
	links, err := r.links(ctx, bson.M{"role_id": doc.ID})
	if err != nil {
		return nil, err
	}
	names, err := r.permissionNames(ctx, links)
	if err != nil {
		return nil, err
	}

	perms := make([]string, 0, len(links))
	for _, l := range links {
		if n, ok := names[l.PermissionID]; ok {
			perms = append(perms, n)
		}
	}
	return toRole(doc, perms), nil
}

func (r *RoleRepository) links(ctx context.Context, filter bson.M) ([]permissionRoleDoc, error) {
	cur, err := r.permissionRoles.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load role permissions: %w", err)
	}
	var links []permissionRoleDoc
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode role permissions: %w", err)
	}
	return links, nil
}

func (r *RoleRepository) permissionNames(ctx context.Context, links []permissionRoleDoc) (map[primitive.ObjectID]string, error) {
	if len(links) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.PermissionID)
	}

	cur, err := r.permissions.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	var docs []permissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	names := make(map[primitive.ObjectID]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}

func toRole(doc *roleDoc, perms []string) *domain.Role {
	if perms == nil {
		perms = []string{}
	}
	return &domain.Role{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Label:       doc.Label,
		Permissions: perms,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}
