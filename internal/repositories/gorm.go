package repositories

import (
	"context"
	"errors"
	"time"

	"todo-manager/backend/internal/errs"
	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type base struct {
	db      *gorm.DB
	timeout time.Duration
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b base) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return errs.Store("ping", err)
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return errs.Store("ping", sqlDB.PingContext(ctx))
}

type GormUserRepository struct {
	base
}

func NewGormUserRepository(db *gorm.DB, timeout time.Duration) *GormUserRepository {
	return &GormUserRepository{base{db: db, timeout: timeout}}
}

func (r *GormUserRepository) Create(ctx context.Context, user models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Create(&user).Error
	if isDuplicate(err) {
		return errs.Validation("email", "email is already registered")
	}
	return errs.Store("create user", err)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "find user by email", "email = ?", email)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.findOne(ctx, "find user by id", "id = ?", id)
}

func (r *GormUserRepository) findOne(ctx context.Context, op, query string, arg interface{}) (models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, errs.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, errs.Store(op, err)
	}
	return user, nil
}

type GormTaskRepository struct {
	base
}

func NewGormTaskRepository(db *gorm.DB, timeout time.Duration) *GormTaskRepository {
	return &GormTaskRepository{base{db: db, timeout: timeout}}
}

func (r *GormTaskRepository) Insert(ctx context.Context, task models.Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return errs.Store("insert task", r.db.WithContext(ctx).Select("*").Create(&task).Error)
}

func (r *GormTaskRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var task models.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Take(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, errs.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, errs.Store("find task", err)
	}
	return task, nil
}

func (r *GormTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tasks := make([]models.Task, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, errs.Store("list tasks", err)
	}
	return tasks, nil
}

// Update persists title, completed and updatedAt of task. The owner and creation time are never written.
func (r *GormTaskRepository) Update(ctx context.Context, ownerID uuid.UUID, task models.Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", task.ID, ownerID).
		Updates(map[string]interface{}{
			"title":      task.Title,
			"completed":  task.Completed,
			"updated_at": task.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Store("update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Task{})
	if result.Error != nil {
		return errs.Store("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrTaskNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
