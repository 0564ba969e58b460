package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// UserRepository is the Directory: user records keyed by a sequence id with
// unique username and email.
type UserRepository struct {
	col  *mongo.Collection
	seqs *Sequences
}

func NewUserRepository(db *mongo.Database, seqs *Sequences) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers), seqs: seqs}
}

type userDoc struct {
	ID          int64      `bson:"_id"`
	Username    string     `bson:"username"`
	Email       string     `bson:"email"`
	FirstName   string     `bson:"first_name"`
	LastName    string     `bson:"last_name"`
	Bio         string     `bson:"bio"`
	Role        string     `bson:"role"`
	IsSuperuser bool       `bson:"is_superuser"`
	IsStaff     bool       `bson:"is_staff"`
	LastLogin   *time.Time `bson:"last_login"`
	DateJoined  time.Time  `bson:"date_joined"`
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:          d.ID,
		Username:    d.Username,
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Bio:         d.Bio,
		Role:        d.Role,
		IsSuperuser: d.IsSuperuser,
		IsStaff:     d.IsStaff,
		DateJoined:  d.DateJoined.UTC(),
	}
	if d.LastLogin != nil {
		at := d.LastLogin.UTC()
		u.LastLogin = &at
	}
	return u
}

// Create inserts a user. A zero ID is assigned from the users sequence.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seqs.assign(ctx, collectionUsers, user.ID)
	if err != nil {
		return nil, err
	}

	doc := userDoc{
		ID:          id,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Bio:         user.Bio,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		IsStaff:     user.IsStaff,
		LastLogin:   user.LastLogin,
		DateJoined:  user.DateJoined.UTC(),
	}
	if doc.Role == "" {
		doc.Role = domain.RoleUser
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsernameAndEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "email": email})
}

// List returns users ordered by username. search matches a username
// substring, case-insensitively.
func (r *UserRepository) List(ctx context.Context, search string, page domain.PageRequest) ([]*domain.User, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if search != "" {
		filter["username"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, findOpts(page.Skip(), page.Normalize().Size, bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	set := bson.M{}
	for field, value := range map[string]*string{
		"username":   upd.Username,
		"email":      upd.Email,
		"first_name": upd.FirstName,
		"last_name":  upd.LastName,
		"bio":        upd.Bio,
		"role":       upd.Role,
	} {
		if value != nil {
			set[field] = *value
		}
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findAndSet(ctx, bson.M{"_id": id}, set)
}

// TouchLogin sets last_login to at only if it still equals prev. A record
// that moved on, or vanished, yields domain.ErrUserNotFound.
func (r *UserRepository) TouchLogin(ctx context.Context, id int64, prev *time.Time, at time.Time) (*domain.User, error) {
	filter := bson.M{"_id": id, "last_login": nil}
	if prev != nil {
		filter["last_login"] = prev.UTC()
	}
	return r.findAndSet(ctx, filter, bson.M{"last_login": at.UTC()})
}

func (r *UserRepository) findAndSet(ctx context.Context, filter, set bson.M) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	switch {
	case notFound(err):
		return nil, domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrDuplicate
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
