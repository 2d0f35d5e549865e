package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/logger"
	"quiz_app_backend/quiz"
)

type ProgressHandler struct {
	registry *quiz.Registry
	log      *logger.Logger
}

func NewProgressHandler(registry *quiz.Registry, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{registry: registry, log: log}
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	tracker, ok := h.tracker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tracker.Progress())
}

func (h *ProgressHandler) GetLevelResult(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("level"))
	if err != nil || !quiz.Level(n).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Level must be between 1 and 3"})
		return
	}

	tracker, ok := h.tracker(c)
	if !ok {
		return
	}
	result, found := tracker.ResultFor(quiz.Level(n))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No result for this level yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// tracker refuses to serve progress it could not load, unlike the quiz
// routes which can run on defaults.
func (h *ProgressHandler) tracker(c *gin.Context) (*quiz.Tracker, bool) {
	userID := c.GetInt("userID")
	ctrl, err := h.registry.Get(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Error loading progress", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Progress is temporarily unavailable"})
		return nil, false
	}
	return ctrl.Tracker(), true
}
