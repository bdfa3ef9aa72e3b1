package services

import (
	"context"
	"time"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

type TaskService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error)
	Create(ctx context.Context, ownerID uuid.UUID, title string) (models.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (uuid.UUID, error)
}

// TaskServiceImpl applies task rules on top of a TaskRepository.
// Concurrent updates of the same task are last-write-wins.
type TaskServiceImpl struct {
	tasks repositories.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks repositories.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, now: time.Now}
}

func (s *TaskServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *TaskServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	return s.tasks.FindByID(ctx, ownerID, id)
}

func (s *TaskServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, title string) (models.Task, error) {
	task, err := models.NewTask(ownerID, title, s.now())
	if err != nil {
		return models.Task{}, err
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	current, err := s.tasks.FindByID(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, err
	}

	updated, err := current.Apply(patch, s.now())
	if err != nil {
		return models.Task{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	if err := s.tasks.Update(ctx, ownerID, updated); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) (uuid.UUID, error) {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
