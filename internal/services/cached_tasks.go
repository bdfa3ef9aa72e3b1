package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// CachedTaskService caches each owner's task list and drops it on every mutation by that owner.
// Cache failures are logged and never fail a request.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
	ttl         time.Duration
	logger      *zap.Logger

	// generations is bumped before every invalidation. Owners share slots by the last id byte.
	generations [generationSlots]atomic.Uint64
}

const generationSlots = 256

func NewCachedTaskService(taskService TaskService, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedTaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTaskService{
		taskService: taskService,
		cache:       c,
		ttl:         ttl,
		logger:      logger,
	}
}

func ownerListKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:owner:%s", ownerID.String())
}

func (s *CachedTaskService) generation(ownerID uuid.UUID) *atomic.Uint64 {
	return &s.generations[ownerID[len(ownerID)-1]]
}

// List serves the owner's list from cache, filling it on a miss. A list read while a mutation
// by the same owner was in flight is never left in the cache.
func (s *CachedTaskService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	key := ownerListKey(ownerID)

	var cached []models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	gen := s.generation(ownerID)
	before := gen.Load()

	tasks, err := s.taskService.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if gen.Load() != before {
		return tasks, nil
	}

	if err := s.cache.Set(ctx, key, tasks, s.ttl); err != nil {
		s.logger.Warn("failed to cache task list", zap.String("key", key), zap.Error(err))
	}
	// A mutation that bumped the generation after the check above may have deleted the key
	// before Set landed.
	if gen.Load() != before {
		s.drop(ctx, key)
	}
	return tasks, nil
}

func (s *CachedTaskService) Get(ctx context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	return s.taskService.Get(ctx, ownerID, id)
}

func (s *CachedTaskService) Create(ctx context.Context, ownerID uuid.UUID, title string) (models.Task, error) {
	task, err := s.taskService.Create(ctx, ownerID, title)
	if err != nil {
		return task, err
	}
	s.invalidate(ctx, ownerID)
	return task, nil
}

func (s *CachedTaskService) Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	task, err := s.taskService.Update(ctx, ownerID, id, patch)
	if err != nil {
		return task, err
	}
	if !patch.IsEmpty() {
		s.invalidate(ctx, ownerID)
	}
	return task, nil
}

func (s *CachedTaskService) Delete(ctx context.Context, ownerID, id uuid.UUID) (uuid.UUID, error) {
	deleted, err := s.taskService.Delete(ctx, ownerID, id)
	if err != nil {
		return deleted, err
	}
	s.invalidate(ctx, ownerID)
	return deleted, nil
}

func (s *CachedTaskService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	s.generation(ownerID).Add(1)
	s.drop(ctx, ownerListKey(ownerID))
}

func (s *CachedTaskService) drop(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate task list", zap.String("key", key), zap.Error(err))
	}
}
