package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/logger"
	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
	"quiz_app_backend/validation"
)

type QuizHandler struct {
	registry *quiz.Registry
	log      *logger.Logger
}

func NewQuizHandler(registry *quiz.Registry, log *logger.Logger) *QuizHandler {
	return &QuizHandler{registry: registry, log: log}
}

// ListLevels is public. Anonymous callers and teachers see only the first
// level unlocked.
func (h *QuizHandler) ListLevels(c *gin.Context) {
	tracker := quiz.NewTracker(0, quiz.TrackerConfig{})
	if c.GetInt("userID") != 0 && c.GetString("userRole") == models.RoleStudent {
		ctrl, ok := h.controller(c)
		if !ok {
			return
		}
		tracker = ctrl.Tracker()
	}
	c.JSON(http.StatusOK, gin.H{"levels": levelStatuses(h.registry.Bank(), tracker)})
}

// MyLevels lists the levels with the caller's lock state and latest results.
func (h *QuizHandler) MyLevels(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"levels":  levelStatuses(h.registry.Bank(), ctrl.Tracker()),
		"notices": ctrl.Notices(),
	})
}

func (h *QuizHandler) GetSession(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, ctrl)
}

func (h *QuizHandler) Start(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req models.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, ctrl, http.StatusBadRequest, validation.Message(err))
		return
	}
	if err := ctrl.Start(quiz.Level(req.Level)); err != nil {
		h.quizError(c, ctrl, err, req.Level)
		return
	}
	h.respond(c, http.StatusOK, ctrl)
}

func (h *QuizHandler) Answer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, ctrl, http.StatusBadRequest, validation.Message(err))
		return
	}
	if err := ctrl.SelectAnswer(quiz.OptionKey(strings.ToLower(req.Option))); err != nil {
		h.quizError(c, ctrl, err, 0)
		return
	}
	h.respond(c, http.StatusOK, ctrl)
}

func (h *QuizHandler) Next(c *gin.Context) {
	h.step(c, (*quiz.Controller).Advance)
}

func (h *QuizHandler) Previous(c *gin.Context) {
	h.step(c, (*quiz.Controller).Back)
}

func (h *QuizHandler) Submit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if _, err := ctrl.Submit(); err != nil {
		h.quizError(c, ctrl, err, 0)
		return
	}
	h.respond(c, http.StatusOK, ctrl)
}

func (h *QuizHandler) Reset(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.Reset()
	h.respond(c, http.StatusOK, ctrl)
}

func (h *QuizHandler) step(c *gin.Context, move func(*quiz.Controller) error) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := move(ctrl); err != nil {
		h.quizError(c, ctrl, err, 0)
		return
	}
	h.respond(c, http.StatusOK, ctrl)
}

// controller fetches the caller's controller. A failed progress load is
// logged and the request continues on the default progress.
func (h *QuizHandler) controller(c *gin.Context) (*quiz.Controller, bool) {
	userID := c.GetInt("userID")
	ctrl, err := h.registry.Get(c.Request.Context(), userID)
	if err != nil {
		h.log.Warn("Using default progress, stored progress unavailable", "user_id", userID, "error", err)
	}
	if ctrl == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quiz session"})
		return nil, false
	}
	return ctrl, true
}

func (h *QuizHandler) respond(c *gin.Context, status int, ctrl *quiz.Controller) {
	c.JSON(status, models.QuizResponse{Session: ctrl.Snapshot(), Notices: ctrl.Notices()})
}

func (h *QuizHandler) fail(c *gin.Context, ctrl *quiz.Controller, status int, msg string) {
	c.JSON(status, gin.H{"error": msg, "notices": ctrl.Notices()})
}

func (h *QuizHandler) quizError(c *gin.Context, ctrl *quiz.Controller, err error, level int) {
	switch {
	case errors.Is(err, quiz.ErrLevelLocked):
		h.fail(c, ctrl, http.StatusForbidden, fmt.Sprintf("Level %d is locked. Pass the previous level first.", level))
	case errors.Is(err, quiz.ErrNoQuestions):
		h.fail(c, ctrl, http.StatusUnprocessableEntity, "No questions available for this level")
	case errors.Is(err, quiz.ErrInvalidOption):
		h.fail(c, ctrl, http.StatusBadRequest, "Option must be one of a, b, c, d")
	case errors.Is(err, quiz.ErrInvalidLevel):
		h.fail(c, ctrl, http.StatusBadRequest, "Level must be between 1 and 3")
	case errors.Is(err, quiz.ErrNotInProgress):
		h.fail(c, ctrl, http.StatusConflict, "No quiz in progress")
	default:
		h.log.Error("Quiz operation failed", "user_id", c.GetInt("userID"), "error", err)
		h.fail(c, ctrl, http.StatusInternalServerError, "Quiz operation failed")
	}
}

func levelStatuses(bank *quiz.Bank, tracker *quiz.Tracker) []models.LevelStatus {
	infos := bank.Levels()
	out := make([]models.LevelStatus, 0, len(infos))
	for _, info := range infos {
		st := models.LevelStatus{LevelInfo: info, Locked: tracker.IsLocked(info.Level)}
		if r, ok := tracker.ResultFor(info.Level); ok {
			score := r.Score
			st.LastScore = &score
			st.Completed = true
			st.Result = &r
		}
		out = append(out, st)
	}
	return out
}
