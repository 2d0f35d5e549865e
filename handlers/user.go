package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/logger"
	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
)

type UserHandler struct {
	db       *sql.DB
	registry *quiz.Registry
	log      *logger.Logger
}

func NewUserHandler(db *sql.DB, registry *quiz.Registry, log *logger.Logger) *UserHandler {
	return &UserHandler{db: db, registry: registry, log: log}
}

// GetUserInfo returns the caller's profile. Students also get their progress.
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userID := c.GetInt("userID")

	var user models.User
	err := h.db.QueryRowContext(c.Request.Context(),
		`SELECT id, name, email, role, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error("Error getting user profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}

	profile := user.Profile()
	if user.Role == models.RoleStudent {
		ctrl, err := h.registry.Get(c.Request.Context(), userID)
		if err != nil {
			h.log.Warn("Serving profile without stored progress", "user_id", userID, "error", err)
		}
		p := ctrl.Tracker().Progress()
		profile.Progress = &p
	}

	c.JSON(http.StatusOK, profile)
}
