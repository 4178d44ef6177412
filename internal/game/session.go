package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"cognitrain-go/internal/models"
	"cognitrain-go/internal/results"
	"cognitrain-go/internal/timer"
)

// State is the session's position in the shared state machine.
type State string

const (
	StateNotStarted State = "not_started"
	StatePresenting State = "presenting"
	StateAwaiting   State = "awaiting_response"
	StateFeedback   State = "feedback"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrSessionOver    = errors.New("session has terminated")
	ErrNotAwaiting    = errors.New("session is not awaiting an answer")
	ErrTrialResolved  = errors.New("trial already resolved")
)

// Sinks are the external persistence collaborators. Failures are logged
// and swallowed; they never alter game state.
type Sinks struct {
	SaveResult   func(ctx context.Context, result *models.GameResult, rows []models.TrialRow) error
	SaveProgress func(ctx context.Context, userID int, domain string, score int) error
}

// Snapshot is a point-in-time view of a session for clients and the
// live-state mirror.
type Snapshot struct {
	ID                  string                   `json:"id"`
	Game                string                   `json:"game"`
	Domain              string                   `json:"domain"`
	State               State                    `json:"state"`
	Level               int                      `json:"level"`
	Score               int                      `json:"score"`
	Streak              int                      `json:"streak"`
	ConsecutiveFailures int                      `json:"consecutiveFailures"`
	TotalFailures       int                      `json:"totalFailures"`
	TrialsCompleted     int                      `json:"trialsCompleted"`
	CorrectAnswers      int                      `json:"correctAnswers"`
	Trial               View                     `json:"trial,omitempty"`
	SessionRemaining    int                      `json:"sessionRemaining"`
	TrialRemaining      int                      `json:"trialRemaining"`
	Reason              models.TerminationReason `json:"reason,omitempty"`
	Result              *models.GameResult       `json:"result,omitempty"`
	Saved               bool                     `json:"saved"`
}

// Session owns one player's run of one game: all counters, the trial
// history and the timers. Counters and history are never shared across
// sessions.
type Session struct {
	ID        string
	UserID    int
	CreatedAt time.Time

	mu      sync.Mutex
	log     *zap.Logger
	variant Variant
	rules   Rules
	timers  *timer.Coordinator
	sinks   Sinks

	state           State
	level           int
	maxLevelReached int
	score           int
	streak          int
	consecFails     int
	totalFails      int
	trialsDone      int
	correct         int
	groupCorrect    int
	groupTotal      int
	history         []models.TrialEntry

	startedAt      time.Time
	endedAt        time.Time
	trialStartedAt time.Time
	trialSeconds   int
	trialResolved  bool
	lastCorrect    bool
	disposed       bool

	reason models.TerminationReason
	result *models.GameResult
	saved  bool

	lastActivity time.Time
	onChange     func(Snapshot)
}

// NewSession wires a session over a variant. The coordinator decides the
// tick source; pass one built on a manual ticker in tests.
func NewSession(id string, userID int, v Variant, co *timer.Coordinator, log *zap.Logger, sinks Sinks) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    time.Now(),
		log:          log,
		variant:      v,
		rules:        v.Rules(),
		timers:       co,
		sinks:        sinks,
		state:        StateNotStarted,
		lastActivity: time.Now(),
	}
}

// SetOnChange installs the state-change observer. Must be called before
// Start.
func (s *Session) SetOnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// GameName returns the variant's name.
func (s *Session) GameName() string { return s.variant.Name() }

// Domain returns the variant's cognitive domain tag.
func (s *Session) Domain() string { return s.variant.Domain() }

// LastActivity reports when the session was last driven by the player.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Start moves the session from NotStarted into play: counters reset,
// session timer started, first trial requested.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	s.startedAt = time.Now()
	s.lastActivity = s.startedAt
	s.level = s.rules.StartLevel
	s.maxLevelReached = s.level

	s.timers.Start(timer.RoleSession, s.rules.SessionSeconds, nil, s.handleSessionExpiry)
	s.beginTrialLocked()
	s.notifyLocked()
	return nil
}

// SubmitAnswer grades the player's answer for the current trial. Events
// arriving after the trial is already resolved, or after termination, do
// not mutate state.
func (s *Session) SubmitAnswer(raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminalLocked() {
		return ErrSessionOver
	}
	if s.state != StateAwaiting {
		return ErrNotAwaiting
	}
	if s.trialResolved {
		return ErrTrialResolved
	}

	correct, response, err := s.variant.Grade(raw)
	if err != nil {
		return err
	}

	s.lastActivity = time.Now()
	remaining := s.timers.Remaining(timer.RoleTrial)
	latency := time.Since(s.trialStartedAt).Seconds()
	s.resolveLocked(correct, response, models.CauseAnswered, latency, remaining)
	s.notifyLocked()
	return nil
}

// Restart returns the session to NotStarted from any state: timers
// cancelled, counters and history cleared, saved flag reset.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers.StopAll()
	s.variant.Reset()

	s.state = StateNotStarted
	s.level = 0
	s.maxLevelReached = 0
	s.score = 0
	s.streak = 0
	s.consecFails = 0
	s.totalFails = 0
	s.trialsDone = 0
	s.correct = 0
	s.groupCorrect = 0
	s.groupTotal = 0
	s.history = nil
	s.trialResolved = false
	s.reason = ""
	s.result = nil
	s.saved = false
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.lastActivity = time.Now()
	s.notifyLocked()
}

// Dispose tears the session down: every timer is cancelled and later
// callbacks become no-ops. No result is computed for a disposed session.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.timers.StopAll()
}

// Snapshot returns the current client view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:                  s.ID,
		Game:                s.variant.Name(),
		Domain:              s.variant.Domain(),
		State:               s.state,
		Level:               s.level,
		Score:               s.score,
		Streak:              s.streak,
		ConsecutiveFailures: s.consecFails,
		TotalFailures:       s.totalFails,
		TrialsCompleted:     s.trialsDone,
		CorrectAnswers:      s.correct,
		SessionRemaining:    s.timers.Remaining(timer.RoleSession),
		TrialRemaining:      s.timers.Remaining(timer.RoleTrial),
		Reason:              s.reason,
		Saved:               s.saved,
	}
	switch s.state {
	case StatePresenting:
		snap.Trial = s.variant.PresentView()
	case StateAwaiting:
		snap.Trial = s.variant.ResponseView()
	case StateCompleted, StateFailed:
		snap.Result = s.result
	}
	return snap
}

func (s *Session) terminalLocked() bool {
	return s.state == StateCompleted || s.state == StateFailed
}

// beginTrialLocked requests the next trial, handling pool exhaustion and
// group-accuracy level advancement.
func (s *Session) beginTrialLocked() {
	if s.rules.TrialLimit > 0 && s.trialsDone >= s.rules.TrialLimit {
		s.terminateLocked(StateCompleted, models.ReasonCompleted)
		return
	}

	level, ok := s.variant.Begin(s.level)
	if !ok {
		s.handleExhaustionLocked()
		return
	}

	s.level = level
	if level > s.maxLevelReached {
		s.maxLevelReached = level
	}
	s.trialResolved = false

	if present := s.variant.PresentSeconds(s.level); present > 0 {
		s.state = StatePresenting
		s.trialStartedAt = time.Now()
		s.timers.Start(timer.RoleTrial, present, nil, s.handlePresentExpiry)
	} else {
		s.startAnswerWindowLocked()
	}
}

func (s *Session) handleExhaustionLocked() {
	if s.rules.Advance == AdvanceOnGroupAccuracy {
		passed := results.AccuracyPct(s.groupCorrect, s.groupTotal) >= s.rules.GroupAccuracyPct
		if passed && s.level < s.rules.MaxLevel {
			s.level++
			if s.level > s.maxLevelReached {
				s.maxLevelReached = s.level
			}
			s.groupCorrect, s.groupTotal = 0, 0
			s.beginTrialLocked()
			return
		}
		if passed {
			s.terminateLocked(StateCompleted, models.ReasonCompleted)
		} else {
			s.terminateLocked(StateFailed, models.ReasonBelowThreshold)
		}
		return
	}
	s.terminateLocked(StateCompleted, models.ReasonCompleted)
}

func (s *Session) startAnswerWindowLocked() {
	s.state = StateAwaiting
	s.trialSeconds = s.variant.AnswerSeconds(s.level)
	s.trialStartedAt = time.Now()
	s.timers.Start(timer.RoleTrial, s.trialSeconds, nil, s.handleTrialExpiry)
}

// resolveLocked settles the current trial and either terminates on the
// failure limit or schedules the feedback window.
func (s *Session) resolveLocked(correct bool, response any, cause models.FailureCause, latency float64, remaining int) {
	s.trialResolved = true
	s.lastCorrect = correct
	s.timers.Stop(timer.RoleTrial)

	s.trialsDone++
	s.groupTotal++
	s.history = append(s.history, models.TrialEntry{
		Number:           s.trialsDone,
		Level:            s.level,
		Stimulus:         s.variant.Stimulus(),
		Response:         response,
		Correct:          correct,
		Cause:            cause,
		LatencySeconds:   latency,
		RemainingSeconds: remaining,
	})

	if correct {
		s.correct++
		s.groupCorrect++
		if s.rules.LevelWeighted {
			s.score += s.level
		} else {
			s.score++
		}
		s.streak++
		s.consecFails = 0
	} else {
		s.streak = 0
		s.consecFails++
		s.totalFails++
		if cause == models.CauseTimeout && s.rules.DropLevelOnTimeout && s.level > s.rules.StartLevel {
			s.level--
		}
		if s.consecFails >= s.rules.FailureLimit {
			s.terminateLocked(StateFailed, models.ReasonConsecutiveErrors)
			return
		}
	}

	s.state = StateFeedback
	s.timers.Start(timer.RoleTrial, s.rules.FeedbackSeconds, nil, s.handleFeedbackDone)
}

func (s *Session) handlePresentExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.terminalLocked() || s.state != StatePresenting {
		return
	}
	s.startAnswerWindowLocked()
	s.notifyLocked()
}

func (s *Session) handleTrialExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.terminalLocked() || s.trialResolved || s.state != StateAwaiting {
		return
	}

	if s.rules.Timeout == TimeoutFatal {
		s.terminateLocked(StateFailed, models.ReasonTrialTimeout)
		s.notifyLocked()
		return
	}
	s.resolveLocked(false, nil, models.CauseTimeout, float64(s.trialSeconds), 0)
	s.notifyLocked()
}

func (s *Session) handleFeedbackDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.terminalLocked() || s.state != StateFeedback {
		return
	}

	if s.lastCorrect && s.rules.Advance == AdvanceOnStreak && s.streak >= s.rules.StreakToAdvance {
		if s.level < s.rules.MaxLevel {
			s.level++
			if s.level > s.maxLevelReached {
				s.maxLevelReached = s.level
			}
		}
		s.streak = 0
	}
	s.beginTrialLocked()
	s.notifyLocked()
}

func (s *Session) handleSessionExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.terminalLocked() {
		return
	}
	s.terminateLocked(StateFailed, models.ReasonTimeExhausted)
	s.notifyLocked()
}

// terminateLocked enters a terminal state: timers first, aggregation
// second, persistence last. The result is computed exactly once.
func (s *Session) terminateLocked(state State, reason models.TerminationReason) {
	s.timers.StopAll()
	s.state = state
	s.reason = reason
	s.endedAt = time.Now()

	if s.result != nil {
		return
	}

	var submetrics map[string]float64
	if sm, ok := s.variant.(Summarizer); ok {
		submetrics = sm.Summarize(s.history)
	}

	s.result = results.Aggregate(results.Params{
		Game:            s.variant.Name(),
		Domain:          s.variant.Domain(),
		StartLevel:      s.rules.StartLevel,
		MaxLevel:        s.rules.MaxLevel,
		MaxLevelReached: s.maxLevelReached,
		LevelWeightPct:  s.rules.LevelWeightPct,
		Correct:         s.correct,
		Attempted:       s.trialsDone,
		Start:           s.startedAt,
		End:             s.endedAt,
		Reason:          reason,
		History:         s.history,
		Submetrics:      submetrics,
	})
	s.result.UserID = s.UserID
	s.persistLocked()
}

// persistLocked hands the result to the sinks. A missing user skips
// persistence; sink failures are logged and never surface as game state.
func (s *Session) persistLocked() {
	if s.UserID == 0 {
		s.log.Info("No user on session, skipping result persistence",
			zap.String("session", s.ID), zap.String("game", s.variant.Name()))
		return
	}
	if s.sinks.SaveResult == nil && s.sinks.SaveProgress == nil {
		return
	}

	result := s.result
	rows := models.TrialRowsFromHistory(s.history)
	userID := s.UserID
	domain := s.variant.Domain()
	score := result.Score

	go func() {
		ctx := context.Background()
		if s.sinks.SaveResult != nil {
			if err := s.sinks.SaveResult(ctx, result, rows); err != nil {
				s.log.Error("Failed to save game result",
					zap.String("session", s.ID), zap.Error(err))
			} else {
				s.markSaved()
			}
		}
		if s.sinks.SaveProgress != nil {
			if err := s.sinks.SaveProgress(ctx, userID, domain, score); err != nil {
				s.log.Error("Failed to update progress aggregate",
					zap.String("session", s.ID), zap.Error(err))
			}
		}
	}()
}

func (s *Session) markSaved() {
	s.mu.Lock()
	if !s.saved {
		s.saved = true
	}
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (s *Session) notifyLocked() {
	if s.onChange == nil {
		return
	}
	snap := s.snapshotLocked()
	go s.onChange(snap)
}
