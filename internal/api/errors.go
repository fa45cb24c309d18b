package api

import (
	"errors"   // Error kind matching
	"net/http" // HTTP status codes

	"gecko_rack/internal/service" // Service error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// ErrorResponse writes the standard error body and aborts the request
func ErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// HandleServiceError maps service error kinds to HTTP statuses
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrValidation):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuth):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		// Log the internal error for debugging
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method, // Request method
			"path":   c.FullPath(),     // Matched route
			"error":  err.Error(),      // Error message
		}).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
