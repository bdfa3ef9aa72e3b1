package services

import (
	"context"
	"sort"
	"sync"

	"todo-manager/backend/internal/errs"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]models.User

	createErr error
	findErr   error
}

var _ repositories.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.Validation("email", "email is already registered")
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return models.User{}, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, errs.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, errs.ErrUserNotFound
}

type fakeTasks struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]models.Task
	calls map[string]int

	err error
}

var _ repositories.TaskRepository = (*fakeTasks)(nil)

func newFakeTasks() *fakeTasks {
	return &fakeTasks{byID: map[uuid.UUID]models.Task{}, calls: map[string]int{}}
}

func (f *fakeTasks) Insert(_ context.Context, t models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["insert"]++
	if f.err != nil {
		return f.err
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTasks) FindByID(_ context.Context, ownerID, id uuid.UUID) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["find"]++
	if f.err != nil {
		return models.Task{}, f.err
	}
	t, ok := f.byID[id]
	if !ok || t.OwnerID != ownerID {
		return models.Task{}, errs.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTasks) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Task, 0)
	for _, t := range f.byID {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, ownerID uuid.UUID, t models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.err != nil {
		return f.err
	}
	cur, ok := f.byID[t.ID]
	if !ok || cur.OwnerID != ownerID {
		return errs.ErrTaskNotFound
	}
	cur.Title = t.Title
	cur.Completed = t.Completed
	cur.UpdatedAt = t.UpdatedAt
	f.byID[t.ID] = cur
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.err != nil {
		return f.err
	}
	cur, ok := f.byID[id]
	if !ok || cur.OwnerID != ownerID {
		return errs.ErrTaskNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTasks) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}
