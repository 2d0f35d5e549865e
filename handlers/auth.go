package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"quiz_app_backend/logger"
	"quiz_app_backend/middleware"
	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
	"quiz_app_backend/validation"
)

const (
	msgEmailInUse         = "Email already in use"
	msgInvalidCredentials = "Invalid email or password"
)

type AuthHandler struct {
	db           *sql.DB
	tokenService *middleware.TokenService
	registry     *quiz.Registry
	log          *logger.Logger
}

func NewAuthHandler(db *sql.DB, tokenService *middleware.TokenService, registry *quiz.Registry, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		db:           db,
		tokenService: tokenService,
		registry:     registry,
		log:          log,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	ctx := c.Request.Context()
	var exists bool
	if err := h.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists); err != nil {
		h.log.Error("Error checking email existence", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmailInUse})
		return
	}

	hashedPassword, err := middleware.HashPassword(req.Password)
	if err != nil {
		h.log.Error("Error hashing password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, Role: req.Role}
	err = h.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		req.Name, req.Email, hashedPassword, req.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		// Two concurrent registrations can both pass the existence check.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgEmailInUse})
			return
		}
		h.log.Error("Error creating user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	tokens, err := h.tokenService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		h.log.Error("Error generating tokens", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	h.log.Info("User registered", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusCreated, models.AuthResponse{TokenPair: tokens, User: user.Profile()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	err := h.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, password_hash FROM users WHERE email = $1`,
		normalizeEmail(req.Email),
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.log.Error("Error querying user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify credentials"})
		return
	}
	if errors.Is(err, sql.ErrNoRows) || !middleware.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}

	tokens, err := h.tokenService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		h.log.Error("Error generating tokens", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{TokenPair: tokens, User: user.Profile()})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	ctx := c.Request.Context()
	userID, err := h.tokenService.ValidateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			h.log.Error("Error validating refresh token", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var role string
	if err := h.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role); err != nil {
		h.log.Error("Error getting user role", "user_id", userID, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	tokens, err := h.tokenService.GenerateTokens(ctx, userID, role)
	if err != nil {
		h.log.Error("Error generating tokens", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	if err := h.tokenService.InvalidateRefreshToken(ctx, req.RefreshToken); err != nil {
		h.log.Warn("Error invalidating old refresh token", "user_id", userID, "error", err)
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout revokes the given refresh token, or every token of the user when the
// body names none, and drops the in-memory quiz session.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("userID")

	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	ctx := c.Request.Context()
	var err error
	if req.RefreshToken != "" {
		err = h.tokenService.InvalidateRefreshToken(ctx, req.RefreshToken)
	} else {
		err = h.tokenService.InvalidateUserTokens(ctx, userID)
	}
	if err != nil {
		h.log.Error("Error invalidating refresh token", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	h.registry.Drop(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
