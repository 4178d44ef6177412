package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cognitrain-go/internal/game"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/repository"
	"cognitrain-go/internal/timer"
	"cognitrain-go/internal/trials"
)

var ErrSessionNotFound = errors.New("session not found")

// mirrorTTL bounds how long a snapshot outlives its last change in the
// redis mirror.
const mirrorTTL = time.Hour

// SessionManager owns every live game session in the process. Sessions
// are keyed by opaque UUIDs and mirrored into redis on each state change
// so operators can inspect live games.
type SessionManager struct {
	log   *zap.Logger
	pack  *models.ContentPack
	redis *redis.Client

	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionManager(log *zap.Logger, pack *models.ContentPack, redisClient *redis.Client) *SessionManager {
	return &SessionManager{
		log:      log,
		pack:     pack,
		redis:    redisClient,
		sessions: make(map[string]*game.Session),
	}
}

// Create builds a session for a game variant and registers it.
func (m *SessionManager) Create(userID int, gameName string, opts game.Options) (*game.Session, error) {
	variant, err := game.NewVariant(gameName, m.pack, trials.New(), opts)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	co := timer.NewCoordinator(nil)
	sess := game.NewSession(id, userID, variant, co, m.log, game.Sinks{
		SaveResult:   repository.SaveResultTx,
		SaveProgress: repository.UpsertProgress,
	})
	sess.SetOnChange(func(snap game.Snapshot) { m.mirror(snap) })

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.log.Info("Game session created",
		zap.String("session", id),
		zap.String("game", gameName),
		zap.Int("userID", userID))
	return sess, nil
}

// Get returns a live session owned by the user.
func (m *SessionManager) Get(id string, userID int) (*game.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove disposes a session and forgets it.
func (m *SessionManager) Remove(id string, userID int) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok && sess.UserID == userID {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok || sess.UserID != userID {
		return ErrSessionNotFound
	}

	sess.Dispose()
	m.dropMirror(id)
	m.log.Info("Game session removed", zap.String("session", id))
	return nil
}

// ReapIdle disposes sessions with no player activity for longer than the
// cutoff. Returns how many were removed.
func (m *SessionManager) ReapIdle(cutoff time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	var stale []*game.Session
	for id, sess := range m.sessions {
		if now.Sub(sess.LastActivity()) > cutoff {
			stale = append(stale, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range stale {
		sess.Dispose()
		m.dropMirror(sess.ID)
		m.log.Info("Reaped idle game session",
			zap.String("session", sess.ID),
			zap.String("game", sess.GameName()))
	}
	return len(stale)
}

// Count reports how many sessions are live.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func mirrorKey(id string) string { return "game:session:" + id }

// mirror writes a snapshot to redis. The mirror is advisory; failures
// are logged and the game plays on.
func (m *SessionManager) mirror(snap game.Snapshot) {
	if m.redis == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		m.log.Error("Failed to marshal session snapshot", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.redis.Set(ctx, mirrorKey(snap.ID), data, mirrorTTL).Err(); err != nil {
		m.log.Error("Failed to mirror session state",
			zap.String("session", snap.ID), zap.Error(err))
	}
}

func (m *SessionManager) dropMirror(id string) {
	if m.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.redis.Del(ctx, mirrorKey(id)).Err(); err != nil {
		m.log.Error("Failed to drop session mirror",
			zap.String("session", id), zap.Error(err))
	}
}
