// Package mongodb implements the credential and task stores on a MongoDB database.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"todo-manager/backend/internal/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials uri and verifies the deployment with a ping.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{client: client, db: client.Database(database), timeout: timeout}, nil
}

func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.db, s.timeout)
}

func (s *Store) Tasks() *TaskRepository {
	return NewTaskRepository(s.db, s.timeout)
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return errs.Store("ping", s.client.Ping(ctx, nil))
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index and the owner listing index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_users_email"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_tasks_owner_created"),
	})
	if err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	return nil
}

// Database exposes the underlying database for index management.
func (s *Store) Database() *mongo.Database {
	return s.db
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
