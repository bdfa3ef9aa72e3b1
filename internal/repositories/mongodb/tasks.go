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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	Title     string    `bson:"title"`
	Completed bool      `bson:"completed"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toTaskDocument(t models.Task) taskDocument {
	return taskDocument{
		ID:        t.ID.String(),
		OwnerID:   t.OwnerID.String(),
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d taskDocument) toModel() (models.Task, error) {
	id, err := uuid.FromString(d.ID)
	if err != nil {
		return models.Task{}, err
	}
	owner, err := uuid.FromString(d.OwnerID)
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{
		ID:        id,
		OwnerID:   owner,
		Title:     d.Title,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func ownedFilter(ownerID, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "owner_id": ownerID.String()}
}

type TaskRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewTaskRepository(db *mongo.Database, timeout time.Duration) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection), timeout: timeout}
}

func (r *TaskRepository) Insert(ctx context.Context, task models.Task) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, toTaskDocument(task))
	return errs.Store("insert task", err)
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc taskDocument
	err := r.coll.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, errs.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, errs.Store("find task", err)
	}

	task, err := doc.toModel()
	if err != nil {
		return models.Task{}, errs.Store("find task", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID.String()}, opts)
	if err != nil {
		return nil, errs.Store("list tasks", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.Store("list tasks", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toModel()
		if err != nil {
			return nil, errs.Store("list tasks", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, ownerID uuid.UUID, task models.Task) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":      task.Title,
		"completed":  task.Completed,
		"updated_at": task.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, ownedFilter(ownerID, task.ID), update)
	if err != nil {
		return errs.Store("update task", err)
	}
	if result.MatchedCount == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return errs.Store("delete task", err)
	}
	if result.DeletedCount == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}
