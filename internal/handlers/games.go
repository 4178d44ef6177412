package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognitrain-go/internal/game"
	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/services"
)

type GamesHandler struct {
	log     *zap.Logger
	manager *services.SessionManager
	pack    *models.ContentPack
}

func NewGamesHandler(log *zap.Logger, manager *services.SessionManager, pack *models.ContentPack) *GamesHandler {
	return &GamesHandler{log: log, manager: manager, pack: pack}
}

// ListGames returns the registered game catalog.
func (h *GamesHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": game.List(h.pack)})
}

type createSessionRequest struct {
	Game       string `json:"game" binding:"required"`
	Difficulty string `json:"difficulty"`
}

// CreateSession builds a new session for the logged-in user and returns
// its initial snapshot. The game does not start until /start is called.
func (h *GamesHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game name is required"})
		return
	}

	sess, err := h.manager.Create(currentUserID(c), req.Game, game.Options{
		Difficulty: levels.SpanDifficulty(req.Difficulty),
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sess.Snapshot())
}

// StartSession begins play: the session timer starts and the first trial
// is issued.
func (h *GamesHandler) StartSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Start(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// GetState returns the current snapshot.
func (h *GamesHandler) GetState(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type answerRequest struct {
	Answer json.RawMessage `json:"answer" binding:"required"`
}

// SubmitAnswer grades the player's answer against the current trial.
func (h *GamesHandler) SubmitAnswer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answer payload is required"})
		return
	}

	if err := sess.SubmitAnswer(req.Answer); err != nil {
		switch {
		case errors.Is(err, game.ErrSessionOver):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": sess.Snapshot()})
		case errors.Is(err, game.ErrNotAwaiting), errors.Is(err, game.ErrTrialResolved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// RestartSession returns the session to its pre-start state.
func (h *GamesHandler) RestartSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Restart()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// DeleteSession disposes a session.
func (h *GamesHandler) DeleteSession(c *gin.Context) {
	if err := h.manager.Remove(c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *GamesHandler) session(c *gin.Context) (*game.Session, bool) {
	sess, err := h.manager.Get(c.Param("id"), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

func currentUserID(c *gin.Context) int {
	user, exists := c.Get("user")
	if !exists {
		return 0
	}
	return user.(*models.User).ID
}
