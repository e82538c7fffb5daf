package handlers

import (
	"errors"
	"net/http"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps a domain error kind to an HTTP status and writes the
// error response
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrStateConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrSelfVote):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUserID reads the authenticated user's ID the JWT middleware placed
// in the context
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses an ObjectID path parameter, writing a 400 response on failure
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}
