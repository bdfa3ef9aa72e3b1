package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/errs"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (models.User, auth.Token, error)
	Login(ctx context.Context, email, password string) (models.User, auth.Token, error)
	Verify(token string) (uuid.UUID, error)
}

type TokenIssuer interface {
	auth.Verifier
	Issue(userID uuid.UUID) (auth.Token, error)
}

type AuthServiceImpl struct {
	users     repositories.UserRepository
	tokens    TokenIssuer
	cost      int
	dummyHash []byte
	now       func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, bcryptCost int) (*AuthServiceImpl, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
	}

	// Compared against on unknown emails so both login failures cost one bcrypt check.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &AuthServiceImpl{
		users:     users,
		tokens:    tokens,
		cost:      bcryptCost,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// Register validates the input, stores a new user with a bcrypt hash and issues a token.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (models.User, auth.Token, error) {
	if err := models.ValidatePassword(password); err != nil {
		return models.User{}, auth.Token{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, auth.Token{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := models.NewUser(name, email, string(hash), s.now())
	if err != nil {
		return models.User{}, auth.Token{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, auth.Token{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, auth.Token{}, err
	}
	return user, token, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail with the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (models.User, auth.Token, error) {
	clean, err := models.NormalizeEmail(email)
	if err != nil || password == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return models.User{}, auth.Token{}, errs.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, clean)
	if errors.Is(err, errs.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return models.User{}, auth.Token{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, auth.Token{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, auth.Token{}, errs.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, auth.Token{}, err
	}
	return user, token, nil
}

func (s *AuthServiceImpl) Verify(token string) (uuid.UUID, error) {
	return s.tokens.Verify(token)
}
