package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/auth"
	"go-myshop-agent/internal/gate"
	"go-myshop-agent/internal/models"
)

const identityKey = "identity"

// AuthMiddleware checks if the request has a valid JWT token
func AuthMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// RequireAccount rejects guest sessions.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate.IsGuest(IdentityFrom(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sign in with an account to use this feature"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity AuthMiddleware stored, or nil.
func IdentityFrom(c *gin.Context) models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(models.Identity)
	return id
}
