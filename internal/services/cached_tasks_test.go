package services

import (
	"context"
	"testing"
	"time"

	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedService(t *testing.T, c cache.Cache) (*CachedTaskService, *fakeTasks) {
	t.Helper()
	inner, repo := newTestTaskService()
	return NewCachedTaskService(inner, c, time.Minute, nil), repo
}

func TestCachedTaskService_ListServedFromCache(t *testing.T) {
	svc, repo := newCachedService(t, cache.NewMultiLevelCache(nil, time.Minute))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	_, err := svc.Create(ctx, owner, "Buy milk")
	require.NoError(t, err)

	first, err := svc.List(ctx, owner)
	require.NoError(t, err)
	second, err := svc.List(ctx, owner)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].CreatedAt.Equal(second[0].CreatedAt))
	assert.Equal(t, 1, repo.callCount("list"))
}

func TestCachedTaskService_MutationsInvalidate(t *testing.T) {
	svc, repo := newCachedService(t, cache.NewMultiLevelCache(nil, time.Minute))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	task, err := svc.Create(ctx, owner, "Buy milk")
	require.NoError(t, err)

	tasks, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = svc.Update(ctx, owner, task.ID, models.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	tasks, err = svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	_, err = svc.Delete(ctx, owner, task.ID)
	require.NoError(t, err)

	tasks, err = svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 3, repo.callCount("list"))
}

func TestCachedTaskService_OwnersDoNotShareLists(t *testing.T) {
	svc, _ := newCachedService(t, cache.NewMultiLevelCache(nil, time.Minute))
	ctx := context.Background()
	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())

	_, err := svc.Create(ctx, alice, "Alice's task")
	require.NoError(t, err)
	_, err = svc.List(ctx, alice)
	require.NoError(t, err)

	bobTasks, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobTasks)
}

func TestCachedTaskService_RedisDownFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	config := cache.DefaultCacheConfig()
	config.Addr = mr.Addr()
	config.MaxRetries = -1
	redisCache := cache.NewRedisCache(config)
	t.Cleanup(func() { _ = redisCache.Close() })

	svc, repo := newCachedService(t, cache.NewMultiLevelCache(redisCache, time.Minute))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	mr.Close()

	_, err := svc.Create(ctx, owner, "Buy milk")
	require.NoError(t, err)

	tasks, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, repo.callCount("list"))
}

// pausingTaskService holds List after its store read until release is closed.
type pausingTaskService struct {
	TaskService
	read    chan struct{}
	release chan struct{}
	paused  bool
}

func (p *pausingTaskService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	tasks, err := p.TaskService.List(ctx, ownerID)
	if !p.paused {
		p.paused = true
		close(p.read)
		<-p.release
	}
	return tasks, err
}

func TestCachedTaskService_ListRacingCreateIsNotCached(t *testing.T) {
	inner, _ := newTestTaskService()
	pausing := &pausingTaskService{TaskService: inner, read: make(chan struct{}), release: make(chan struct{})}
	svc := NewCachedTaskService(pausing, cache.NewMultiLevelCache(nil, time.Minute), time.Minute, nil)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	done := make(chan []models.Task)
	go func() {
		tasks, err := svc.List(ctx, owner)
		assert.NoError(t, err)
		done <- tasks
	}()

	<-pausing.read
	_, err := svc.Create(ctx, owner, "Buy milk")
	require.NoError(t, err)
	close(pausing.release)

	assert.Empty(t, <-done)

	tasks, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
}
