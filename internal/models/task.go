package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"todo-manager/backend/internal/errs"

	"github.com/gofrs/uuid"
)

// MaxTitleLength is the longest accepted task title, counted in characters after trimming.
const MaxTitleLength = 200

type Task struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   uuid.UUID `json:"ownerId" gorm:"column:owner_id;type:varchar(36);not null;index"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TaskPatch carries the fields of a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// NewTask validates title and builds an incomplete task owned by ownerID.
func NewTask(ownerID uuid.UUID, title string, now time.Time) (Task, error) {
	if ownerID == uuid.Nil {
		return Task{}, errs.Validation("ownerId", "owner is required")
	}

	clean, err := NormalizeTitle(title)
	if err != nil {
		return Task{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return Task{}, err
	}

	now = now.UTC()
	return Task{
		ID:        id,
		OwnerID:   ownerID,
		Title:     clean,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply returns a copy of t with the patch applied. The owner and creation time never change.
func (t Task) Apply(p TaskPatch, now time.Time) (Task, error) {
	if p.IsEmpty() {
		return t, nil
	}

	updated := t
	if p.Title != nil {
		clean, err := NormalizeTitle(*p.Title)
		if err != nil {
			return Task{}, err
		}
		updated.Title = clean
	}
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}
	updated.UpdatedAt = now.UTC()

	return updated, nil
}

// NormalizeTitle trims title and checks it is non-empty and within MaxTitleLength.
func NormalizeTitle(title string) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", errs.Validation("title", "title is required")
	}
	if utf8.RuneCountInString(clean) > MaxTitleLength {
		return "", errs.Validation("title", "title must be at most %d characters", MaxTitleLength)
	}
	return clean, nil
}
