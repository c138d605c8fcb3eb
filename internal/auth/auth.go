// Package auth provides JWT token issuance and validation plus password
// hashing for the book recommendation service.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

var (
	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the JWT claims carried by service tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues and validates HS256-signed tokens.
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
	issuer   string
}

// NewManager creates a token manager. The secret must be non-empty; the
// config layer enforces that before the manager is constructed.
func NewManager(secret string, tokenTTL time.Duration, issuer string) *Manager {
	return &Manager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		issuer:   issuer,
	}
}

// GenerateToken creates a signed token for a user.
func (m *Manager) GenerateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a token string and returns its claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UserIDFromClaims parses the user ID out of validated claims.
func UserIDFromClaims(claims *Claims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with its bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
