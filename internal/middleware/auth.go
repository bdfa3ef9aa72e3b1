package middleware

import (
	"net/http"
	"strings"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const userIDKey = "user_id"

// Authenticate verifies the bearer token and stores the caller's id under "user_id".
func Authenticate(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, errs.ErrMissingToken)
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			abortUnauthorized(c, errs.ErrInvalidToken)
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}
