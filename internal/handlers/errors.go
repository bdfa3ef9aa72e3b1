package handlers

import (
	"errors"
	"net/http"

	"todo-manager/backend/internal/errs"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidBody = "invalid request body"
	msgStore       = "storage unavailable"
	msgInternal    = "internal server error"
)

// respondError maps a service error to its status code and writes {"error": message}.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *errs.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrStore):
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgStore})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func respondBadBody(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
}
