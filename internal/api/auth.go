package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/domain"  // Domain models
	"gecko_rack/internal/service" // Auth service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the body of a registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Name     string `json:"name" binding:"required"`     // Display name must be provided
}

// LoginRequest is the body of a login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the signed-in user and their token
type AuthResponse struct {
	User  *domain.User `json:"user"`  // Profile
	Token string       `json:"token"` // JWT token
}

// RegisterHandler creates an account and returns a token for it
func RegisterHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			ErrorResponse(c, http.StatusBadRequest, "Email, password and name are required")
			return
		}
		session, err := auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, AuthResponse{User: session.User, Token: session.Token})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			ErrorResponse(c, http.StatusBadRequest, "Email and password are required")
			return
		}
		session, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{User: session.User, Token: session.Token})
	}
}

// MeHandler returns the caller's profile
func MeHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Me(c.Request.Context(), ownerFrom(c))
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
