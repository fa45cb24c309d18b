package middleware

import (
	"context"  // Request context
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// UserLookup reports whether a user account still exists
type UserLookup interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// ActiveUserMiddleware rejects tokens whose user has been removed since issue
func ActiveUserMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(UserIDKey) // Set by JWTAuthMiddleware
		// Check if userID exists in context
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ok, err := users.Exists(c.Request.Context(), userID) // Look the user up
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("User lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// A valid signature for a deleted account is still unauthorized
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
