package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eskil/fileforge/internal/domain"
	"github.com/eskil/fileforge/internal/repository"
)

// UserHandler persists user records on behalf of the upstream auth layer,
// which performs credential checks and password hashing itself.
type UserHandler struct {
	users *repository.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRequest represents the register API request. PasswordHash is
// already hashed by the caller; this service never sees plaintext.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	PasswordHash string `json:"password_hash" binding:"required"`
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Lookup handles GET /api/v1/users?email=.
func (h *UserHandler) Lookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}
