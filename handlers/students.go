package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/logger"
	"quiz_app_backend/models"
	"quiz_app_backend/repository"
	"quiz_app_backend/validation"
)

// StudentHandler serves the teacher dashboard.
type StudentHandler struct {
	repo *repository.StudentRepository
	log  *logger.Logger
}

func NewStudentHandler(repo *repository.StudentRepository, log *logger.Logger) *StudentHandler {
	return &StudentHandler{repo: repo, log: log}
}

func (h *StudentHandler) ListStudents(c *gin.Context) {
	var filter models.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	results, err := h.repo.ListStudents(c.Request.Context(), filter)
	if errors.Is(err, repository.ErrInvalidSort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort key"})
		return
	}
	if err != nil {
		h.log.Error("Error listing students", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch student results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": results, "count": len(results)})
}

func (h *StudentHandler) Summary(c *gin.Context) {
	summary, err := h.repo.Summary(c.Request.Context())
	if err != nil {
		h.log.Error("Error summarizing students", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
