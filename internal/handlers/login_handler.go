package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-myshop-agent/internal/middleware"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/store"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.Users.FindUserByEmail(c.Request.Context(), strings.ToLower(input.Email))
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.signIn(c, models.Authenticated{ID: user.ID, Email: user.Email})
}

func (h *Handler) Register(c *gin.Context) {
	var input RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}
	if err := h.Users.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": user})
}

// DemoAccess starts a local-only guest session.
func (h *Handler) DemoAccess(c *gin.Context) {
	h.signIn(c, models.Guest{SessionID: uuid.NewString()})
}

func (h *Handler) signIn(c *gin.Context, id models.Identity) {
	token, err := h.Issuer.GenerateToken(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s, err := h.Registry.Open(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{
		"token":   token,
		"guest":   false,
		"profile": s.Profile(),
	}
	switch v := id.(type) {
	case models.Authenticated:
		resp["email"] = v.Email
	case models.Guest:
		resp["guest"] = true
		resp["email"] = "demo@myshop.com"
	}
	c.JSON(http.StatusOK, resp)
}

// Logout drops the caller's session and everything loaded for it.
func (h *Handler) Logout(c *gin.Context) {
	h.Registry.Close(middleware.IdentityFrom(c))
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
