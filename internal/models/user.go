package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"todo-manager/backend/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
)

const (
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

var validate = validator.New()

type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime:false"`
}

// NewUser validates the registration fields and builds a user carrying passwordHash.
// The caller hashes the password; ValidatePassword checks it beforehand.
func NewUser(name, email, passwordHash string, now time.Time) (User, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return User{}, errs.Validation("name", "name is required")
	}
	if utf8.RuneCountInString(cleanName) > MaxNameLength {
		return User{}, errs.Validation("name", "name must be at most %d characters", MaxNameLength)
	}

	cleanEmail, err := NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}

	if passwordHash == "" {
		return User{}, errs.Validation("password", "password is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return User{}, err
	}

	now = now.UTC()
	return User{
		ID:           id,
		Name:         cleanName,
		Email:        cleanEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail trims and lower-cases email and checks its format.
func NormalizeEmail(email string) (string, error) {
	clean := strings.ToLower(strings.TrimSpace(email))
	if clean == "" {
		return "", errs.Validation("email", "email is required")
	}
	if len(clean) > MaxEmailLength {
		return "", errs.Validation("email", "email must be at most %d characters", MaxEmailLength)
	}
	if err := validate.Var(clean, "email"); err != nil {
		return "", errs.Validation("email", "email is invalid")
	}
	return clean, nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return errs.Validation("password", "password is required")
	}
	if len(password) < MinPasswordLength {
		return errs.Validation("password", "password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return errs.Validation("password", "password must be at most %d bytes long", MaxPasswordLength)
	}
	return nil
}
