package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/quiz"
)

type HealthHandler struct {
	db   *sql.DB
	bank *quiz.Bank
}

func NewHealthHandler(db *sql.DB, bank *quiz.Bank) *HealthHandler {
	return &HealthHandler{db: db, bank: bank}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"questions": h.bank.Len(),
	})
}
