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

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	DateOfBirth  time.Time          `bson:"date_of_birth"`
	Gender       string             `bson:"gender"`
	NationalID   string             `bson:"national_id"`
	Address      string             `bson:"address"`
	Country      string             `bson:"country"`
	Phone        string             `bson:"phone"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type roleUserDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id"`
	RoleID primitive.ObjectID `bson:"role_id"`
}

// UserRepository stores users in the users collection and their role
// assignments in role_user.
type UserRepository struct {
	users     *mongo.Collection
	roles     *mongo.Collection
	roleUsers *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:     db.Collection(collectionUsers),
		roles:     db.Collection(collectionRoles),
		roleUsers: db.Collection(collectionRoleUser),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.UserNotFound(id)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, key string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.UserNotFound(key)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return r.withRoles(ctx, &doc)
}

// List returns users ordered by _id, which follows insertion order.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		u, err := r.withRoles(ctx, &docs[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		DateOfBirth:  user.DateOfBirth.UTC(),
		Gender:       user.Gender,
		NationalID:   user.NationalID,
		Address:      user.Address,
		Country:      user.Country,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUserNotCreated, err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return toUser(&doc, nil), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.UserNotFound(id)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf(set, "name", changes.Name)
	setIf(set, "email", changes.Email)
	setIf(set, "password_hash", changes.PasswordHash)
	setIf(set, "gender", changes.Gender)
	setIf(set, "national_id", changes.NationalID)
	setIf(set, "address", changes.Address)
	setIf(set, "country", changes.Country)
	setIf(set, "phone", changes.Phone)
	if changes.DateOfBirth != nil {
		set["date_of_birth"] = changes.DateOfBirth.UTC()
	}

	uctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.UpdateOne(uctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUserNotUpdated, err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.UserNotFound(id)
	}
	return r.FindByID(ctx, id)
}

// Delete removes the user and its role_user rows.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.UserNotFound(id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUserNotDeleted, err)
	}
	if res.DeletedCount == 0 {
		return domain.UserNotFound(id)
	}
	if _, err := r.roleUsers.DeleteMany(ctx, bson.M{"user_id": oid}); err != nil {
		return fmt.Errorf("%w: detach roles: %v", domain.ErrUserNotDeleted, err)
	}
	return nil
}

func (r *UserRepository) AttachRole(ctx context.Context, userID, roleID string) error {
	uid, rid, err := pairIDs(userID, roleID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.roleUsers.InsertOne(ctx, roleUserDoc{UserID: uid, RoleID: rid})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("attach role: %w", err)
	}
	return nil
}

func (r *UserRepository) DetachRole(ctx context.Context, userID, roleID string) (bool, error) {
	uid, rid, err := pairIDs(userID, roleID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.roleUsers.DeleteOne(ctx, bson.M{"user_id": uid, "role_id": rid})
	if err != nil {
		return false, fmt.Errorf("detach role: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// withRoles loads the role refs of doc in assignment order.
func (r *UserRepository) withRoles(ctx context.Context, doc *userDoc) (*domain.User, error) {
	cur, err := r.roleUsers.Find(ctx, bson.M{"user_id": doc.ID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load user roles: %w", err)
	}
	var links []roleUserDoc
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode user roles: %w", err)
	}
	if len(links) == 0 {
		return toUser(doc, nil), nil
	}

	ids := make([]primitive.ObjectID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.RoleID)
	}
	rcur, err := r.roles.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	var roles []roleDoc
	if err := rcur.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	byID := make(map[primitive.ObjectID]string, len(roles))
	for _, rd := range roles {
		byID[rd.ID] = rd.Name
	}

	refs := make([]domain.RoleRef, 0, len(links))
	for _, l := range links {
		if name, ok := byID[l.RoleID]; ok {
			refs = append(refs, domain.RoleRef{ID: l.RoleID.Hex(), Name: name})
		}
	}
	return toUser(doc, refs), nil
}

func toUser(doc *userDoc, roles []domain.RoleRef) *domain.User {
	if roles == nil {
		roles = []domain.RoleRef{}
	}
	return &domain.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		DateOfBirth:  doc.DateOfBirth.UTC(),
		Gender:       doc.Gender,
		NationalID:   doc.NationalID,
		Address:      doc.Address,
		Country:      doc.Country,
		Phone:        doc.Phone,
		Roles:        roles,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
}

func setIf(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

// pairIDs parses the two halves of an association row.
func pairIDs(left, right string) (primitive.ObjectID, primitive.ObjectID, error) {
	l, err := primitive.ObjectIDFromHex(left)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", left, err)
	}
	r, err := primitive.ObjectIDFromHex(right)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", right, err)
	}
	return l, r, nil
}
