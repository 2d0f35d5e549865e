package middleware

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"quiz_app_backend/logger"
	"quiz_app_backend/models"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

var errBadHeader = errors.New("Authorization header must be in the format: Bearer {token}")

// AuthMiddleware creates a gin middleware for JWT authentication. The role is
// read from the users table so a role change takes effect without a new token.
func AuthMiddleware(db *sql.DB, jwtSecret []byte, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		claims, tokenString, err := parseBearer(authHeader, jwtSecret)
		if errors.Is(err, errBadHeader) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			log.Debug("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var userRole string
		err = db.QueryRowContext(c.Request.Context(), `SELECT role FROM users WHERE id = $1`, claims.UserID).Scan(&userRole)
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}
		if err != nil {
			log.Error("Error getting user role", "user_id", claims.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user role"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", userRole)
		c.Set("token", tokenString)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid bearer token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if claims, _, err := parseBearer(authHeader, jwtSecret); err == nil {
				c.Set("userID", claims.UserID)
				c.Set("userRole", claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role differs from role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Only %s accounts can access this resource", role)})
			return
		}
		c.Next()
	}
}

func parseBearer(authHeader string, jwtSecret []byte) (*models.Claims, string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "", errBadHeader
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, "", err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, "", errors.New("invalid token")
	}
	return claims, parts[1], nil
}

// TokenService handles token generation and validation
type TokenService struct {
	DB        *sql.DB
	JWTSecret []byte
	Now       func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(db *sql.DB, jwtSecret []byte) *TokenService {
	return &TokenService{
		DB:        db,
		JWTSecret: jwtSecret,
		Now:       time.Now,
	}
}

// GenerateTokens creates a new access and refresh token pair
func (s *TokenService) GenerateTokens(ctx context.Context, userID int, role string) (models.TokenPair, error) {
	now := s.Now()
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	accessTokenString, err := accessToken.SignedString(s.JWTSecret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error signing access token: %w", err)
	}

	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return models.TokenPair{}, err
	}
	refreshToken := hex.EncodeToString(bytes)

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, refreshToken, now.Add(refreshTokenTTL),
	); err != nil {
		return models.TokenPair{}, fmt.Errorf("error storing refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: accessTokenString, RefreshToken: refreshToken}, nil
}

// ValidateRefreshToken checks if a refresh token is valid and returns the user ID
func (s *TokenService) ValidateRefreshToken(ctx context.Context, refreshToken string) (int, error) {
	var userID int
	err := s.DB.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens WHERE token = $1 AND expires_at > NOW()`,
		refreshToken,
	).Scan(&userID)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// InvalidateRefreshToken invalidates a refresh token
func (s *TokenService) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, refreshToken)
	return err
}

// InvalidateUserTokens drops every refresh token of a user.
func (s *TokenService) InvalidateUserTokens(ctx context.Context, userID int) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// VerifyPassword checks if a password matches the hashed version
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// HashPassword creates a bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
