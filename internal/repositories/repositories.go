// Package repositories holds the credential and task stores.
// Every task call takes the owner explicitly; a task under another owner is reported as not found.
package repositories

import (
	"context"

	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type TaskRepository interface {
	Insert(ctx context.Context, task models.Task) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, task models.Task) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
