package mongodb

import (
	"context"
	"errors"
	"time"

	"todo-manager/backend/internal/errs"
	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDocument(u models.User) userDocument {
	return userDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toModel() (models.User, error) {
	id, err := uuid.FromString(d.ID)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

type UserRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), timeout: timeout}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, toUserDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return errs.Validation("email", "email is already registered")
	}
	return errs.Store("create user", err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "find user by email", bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id.String()})
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, errs.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, errs.Store(op, err)
	}

	user, err := doc.toModel()
	if err != nil {
		return models.User{}, errs.Store(op, err)
	}
	return user, nil
}
