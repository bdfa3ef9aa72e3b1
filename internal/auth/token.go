// Package auth mints and verifies the stateless bearer tokens that identify a task owner.
package auth

import (
	"errors"
	"time"

	"todo-manager/backend/internal/errs"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// Token is a signed access token and the moment it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Verifier resolves a bearer token to the identity of its owner.
type Verifier interface {
	Verify(token string) (uuid.UUID, error)
}

// TokenManager issues and verifies HS256 JWTs carrying the user id as subject.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret []byte, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for userID valid for the configured TTL.
func (m *TokenManager) Issue(userID uuid.UUID) (Token, error) {
	if userID == uuid.Nil {
		return Token{}, errors.New("auth: empty user id")
	}

	now := m.now()
	exp := now.Add(m.ttl)
	jti, err := uuid.NewV4()
	if err != nil {
		return Token{}, err
	}

	claims := jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   userID.String(),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the subject.
// Every failure is reported as errs.ErrInvalidToken so callers cannot tell them apart.
func (m *TokenManager) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errs.ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, errs.ErrInvalidToken
	}

	userID, err := uuid.FromString(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errs.ErrInvalidToken
	}

	return userID, nil
}
