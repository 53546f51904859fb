package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-myshop-agent/internal/models"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is what the token carries about its holder.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Guest  bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Identity turns the claims back into the session identity.
func (c *Claims) Identity() models.Identity {
	if c.Guest {
		return models.Guest{SessionID: c.UserID}
	}
	return models.Authenticated{ID: c.UserID, Email: c.Email}
}

// Issuer signs and checks HS256 tokens with one secret.
type Issuer struct {
	key []byte
	now func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{key: []byte(secret), now: time.Now}
}

// GenerateToken creates a signed JWT for an account or a guest session.
func (i *Issuer) GenerateToken(id models.Identity) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(i.now().Add(TokenTTL)),
		},
	}
	switch v := id.(type) {
	case models.Authenticated:
		claims.UserID, claims.Email = v.ID, v.Email
	case models.Guest:
		claims.UserID, claims.Guest = v.SessionID, true
	default:
		return "", errors.New("cannot issue a token without an identity")
	}
	if claims.UserID == "" {
		return "", errors.New("cannot issue a token for an empty id")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// ValidateToken checks signature, algorithm and expiry.
func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
