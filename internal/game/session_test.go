package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cognitrain-go/internal/models"
	"cognitrain-go/internal/timer"
)

// stubVariant is a scripted variant: correctness comes from the submitted
// answer payload and trial supply from the begin hook.
type stubVariant struct {
	rules   Rules
	begin   func(level int) (int, bool)
	present int
	resets  int
}

func (v *stubVariant) Name() string   { return "stub" }
func (v *stubVariant) Domain() string { return "testing" }
func (v *stubVariant) Rules() Rules   { return v.rules }
func (v *stubVariant) Reset()         { v.resets++ }

func (v *stubVariant) Begin(level int) (int, bool) {
	if v.begin != nil {
		return v.begin(level)
	}
	return level, true
}

func (v *stubVariant) PresentSeconds(int) int { return v.present }
func (v *stubVariant) AnswerSeconds(int) int  { return 5 }
func (v *stubVariant) PresentView() View      { return View{"phase": "present"} }
func (v *stubVariant) ResponseView() View     { return View{"phase": "respond"} }
func (v *stubVariant) Stimulus() any          { return "stub-stimulus" }

func (v *stubVariant) Grade(raw json.RawMessage) (bool, any, error) {
	var ans struct {
		Correct *bool `json:"correct"`
	}
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}
	if ans.Correct == nil {
		return false, nil, errMissingAnswer
	}
	return *ans.Correct, *ans.Correct, nil
}

var errMissingAnswer = errors.New("missing correct field")

// tickerLog hands a fresh manual ticker to every countdown and remembers
// the order they were created in.
type tickerLog struct {
	mu      sync.Mutex
	tickers []*timer.ManualTicker
}

func (l *tickerLog) factory() timer.Ticker {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := timer.NewManualTicker()
	l.tickers = append(l.tickers, t)
	return t
}

func (l *tickerLog) at(i int) *timer.ManualTicker {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickers[i]
}

func (l *tickerLog) last() *timer.ManualTicker {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickers[len(l.tickers)-1]
}

func newTestSession(v *stubVariant) (*Session, *tickerLog) {
	log := &tickerLog{}
	co := timer.NewCoordinator(log.factory)
	return NewSession("test-session", 0, v, co, nil, Sinks{}), log
}

func answer(t *testing.T, s *Session, correct bool) {
	t.Helper()
	payload := []byte(`{"correct":false}`)
	if correct {
		payload = []byte(`{"correct":true}`)
	}
	if err := s.SubmitAnswer(payload); err != nil {
		t.Fatalf("SubmitAnswer(%v): %v", correct, err)
	}
}

func waitState(t *testing.T, s *Session, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := s.Snapshot()
		if snap.State == want {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state never reached %q, stuck at %q", want, s.Snapshot().State)
	return Snapshot{}
}

// stepFeedback drives the feedback window so the next trial begins.
func stepFeedback(t *testing.T, s *Session, tickers *tickerLog) {
	t.Helper()
	if snap := s.Snapshot(); snap.State != StateFeedback {
		t.Fatalf("expected feedback state, got %q", snap.State)
	}
	tickers.last().Tick()
}

func baseRules() Rules {
	return Rules{
		StartLevel:      1,
		MaxLevel:        10,
		FailureLimit:    3,
		Advance:         AdvanceOnStreak,
		StreakToAdvance: 3,
		Timeout:         TimeoutCountsWrong,
		SessionSeconds:  300,
		FeedbackSeconds: 1,
	}
}

func TestStartIssuesFirstTrial(t *testing.T) {
	s, _ := newTestSession(&stubVariant{rules: baseRules()})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateAwaiting {
		t.Fatalf("state = %q, want awaiting_response", snap.State)
	}
	if snap.Level != 1 {
		t.Fatalf("level = %d, want 1", snap.Level)
	}
	if snap.Trial["phase"] != "respond" {
		t.Fatalf("trial view = %v, want response view", snap.Trial)
	}
	if err := s.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestPresentPhasePrecedesAnswers(t *testing.T) {
	s, tickers := newTestSession(&stubVariant{rules: baseRules(), present: 2})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StatePresenting {
		t.Fatalf("state = %q, want presenting", snap.State)
	}
	if err := s.SubmitAnswer([]byte(`{"correct":true}`)); err != ErrNotAwaiting {
		t.Fatalf("answer during presentation = %v, want ErrNotAwaiting", err)
	}

	// Run the display window down.
	tickers.last().Tick()
	tickers.last().Tick()
	snap = waitState(t, s, StateAwaiting)
	if snap.Trial["phase"] != "respond" {
		t.Fatalf("trial view = %v after presentation", snap.Trial)
	}
}

func TestThreeConsecutiveFailuresEndTheGame(t *testing.T) {
	s, tickers := newTestSession(&stubVariant{rules: baseRules()})
	s.Start()

	for i := 0; i < 2; i++ {
		answer(t, s, false)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
	}
	answer(t, s, false)

	snap := s.Snapshot()
	if snap.State != StateFailed {
		t.Fatalf("state = %q, want failed", snap.State)
	}
	if snap.Reason != models.ReasonConsecutiveErrors {
		t.Fatalf("reason = %q, want %q", snap.Reason, models.ReasonConsecutiveErrors)
	}
	if snap.Result == nil {
		t.Fatal("terminal snapshot must carry the result")
	}
	if err := s.SubmitAnswer([]byte(`{"correct":true}`)); err != ErrSessionOver {
		t.Fatalf("answer after termination = %v, want ErrSessionOver", err)
	}
}

func TestCorrectAnswerResetsFailureCount(t *testing.T) {
	s, tickers := newTestSession(&stubVariant{rules: baseRules()})
	s.Start()

	for _, correct := range []bool{false, false, true, false, false} {
		answer(t, s, correct)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
	}

	// Five answers in, the two failure runs never reached three.
	snap := s.Snapshot()
	if snap.State != StateAwaiting {
		t.Fatalf("state = %q, want still awaiting", snap.State)
	}
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("consecutive failures = %d, want 2", snap.ConsecutiveFailures)
	}
	if snap.TotalFailures != 4 {
		t.Fatalf("total failures = %d, want 4", snap.TotalFailures)
	}
}

func TestStreakAdvancesLevelAndResets(t *testing.T) {
	s, tickers := newTestSession(&stubVariant{rules: baseRules()})
	s.Start()

	for i := 0; i < 3; i++ {
		answer(t, s, true)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
	}

	snap := s.Snapshot()
	if snap.Level != 2 {
		t.Fatalf("level = %d after 3-streak, want 2", snap.Level)
	}
	if snap.Streak != 0 {
		t.Fatalf("streak = %d after advancement, want 0", snap.Streak)
	}
}

func TestLevelCapsAtMax(t *testing.T) {
	rules := baseRules()
	rules.MaxLevel = 2
	rules.StreakToAdvance = 1
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	for i := 0; i < 4; i++ {
		answer(t, s, true)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
	}
	if snap := s.Snapshot(); snap.Level != 2 {
		t.Fatalf("level = %d, want capped at 2", snap.Level)
	}
}

func TestPoolExhaustionCompletesTheGame(t *testing.T) {
	served := 0
	v := &stubVariant{rules: baseRules(), begin: func(level int) (int, bool) {
		if served >= 2 {
			return level, false
		}
		served++
		return level, true
	}}
	s, tickers := newTestSession(v)
	s.Start()

	answer(t, s, true)
	stepFeedback(t, s, tickers)
	waitState(t, s, StateAwaiting)
	answer(t, s, true)
	stepFeedback(t, s, tickers)

	snap := waitState(t, s, StateCompleted)
	if snap.Reason != models.ReasonCompleted {
		t.Fatalf("reason = %q, want completed", snap.Reason)
	}
	if snap.Result == nil || snap.Result.Total != 2 {
		t.Fatalf("result = %+v, want 2 attempted", snap.Result)
	}
}

func TestTrialLimitCompletesTheGame(t *testing.T) {
	rules := baseRules()
	rules.TrialLimit = 2
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	answer(t, s, true)
	stepFeedback(t, s, tickers)
	waitState(t, s, StateAwaiting)
	answer(t, s, false)
	stepFeedback(t, s, tickers)

	snap := waitState(t, s, StateCompleted)
	if snap.TrialsCompleted != 2 {
		t.Fatalf("trials completed = %d, want 2", snap.TrialsCompleted)
	}
}

func TestGroupAccuracyAdvancesOrFails(t *testing.T) {
	t.Run("pass unlocks next level", func(t *testing.T) {
		perLevel := map[int]int{1: 0, 2: 0}
		rules := baseRules()
		rules.Advance = AdvanceOnGroupAccuracy
		rules.GroupAccuracyPct = 70
		rules.MaxLevel = 2
		v := &stubVariant{rules: rules, begin: func(level int) (int, bool) {
			if perLevel[level] >= 2 {
				return level, false
			}
			perLevel[level]++
			return level, true
		}}
		s, tickers := newTestSession(v)
		s.Start()

		// Both level 1 trials correct: 100% >= 70%, so level 2 opens.
		answer(t, s, true)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
		answer(t, s, true)
		stepFeedback(t, s, tickers)

		snap := waitState(t, s, StateAwaiting)
		if snap.Level != 2 {
			t.Fatalf("level = %d after passing the group, want 2", snap.Level)
		}

		// Passing the final level's group completes the game.
		answer(t, s, true)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
		answer(t, s, true)
		stepFeedback(t, s, tickers)
		snap = waitState(t, s, StateCompleted)
		if snap.Reason != models.ReasonCompleted {
			t.Fatalf("reason = %q, want completed", snap.Reason)
		}
	})

	t.Run("failing the threshold ends the game", func(t *testing.T) {
		served := 0
		rules := baseRules()
		rules.Advance = AdvanceOnGroupAccuracy
		rules.GroupAccuracyPct = 70
		rules.MaxLevel = 2
		v := &stubVariant{rules: rules, begin: func(level int) (int, bool) {
			if served >= 2 {
				return level, false
			}
			served++
			return level, true
		}}
		s, tickers := newTestSession(v)
		s.Start()

		answer(t, s, true)
		stepFeedback(t, s, tickers)
		waitState(t, s, StateAwaiting)
		answer(t, s, false)
		stepFeedback(t, s, tickers)

		snap := waitState(t, s, StateFailed)
		if snap.Reason != models.ReasonBelowThreshold {
			t.Fatalf("reason = %q, want %q", snap.Reason, models.ReasonBelowThreshold)
		}
	})
}

func TestTimeoutCountsWrongAndDropsLevel(t *testing.T) {
	rules := baseRules()
	rules.StreakToAdvance = 1
	rules.DropLevelOnTimeout = true
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	// Climb to level 2 first.
	answer(t, s, true)
	stepFeedback(t, s, tickers)
	waitState(t, s, StateAwaiting)
	if snap := s.Snapshot(); snap.Level != 2 {
		t.Fatalf("level = %d, want 2", snap.Level)
	}

	// Let the answer window run out: 5 ticks.
	trialTicker := tickers.last()
	for i := 0; i < 5; i++ {
		trialTicker.Tick()
	}

	snap := waitState(t, s, StateFeedback)
	if snap.Level != 1 {
		t.Fatalf("level = %d after timeout, want dropped to 1", snap.Level)
	}
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("timeout must count as a failure, got %d", snap.ConsecutiveFailures)
	}
}

func TestTimeoutNeverDropsBelowStartLevel(t *testing.T) {
	rules := baseRules()
	rules.DropLevelOnTimeout = true
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	trialTicker := tickers.last()
	for i := 0; i < 5; i++ {
		trialTicker.Tick()
	}
	snap := waitState(t, s, StateFeedback)
	if snap.Level != 1 {
		t.Fatalf("level = %d, want still 1", snap.Level)
	}
}

func TestFatalTimeoutEndsTheGame(t *testing.T) {
	rules := baseRules()
	rules.Timeout = TimeoutFatal
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	trialTicker := tickers.last()
	for i := 0; i < 5; i++ {
		trialTicker.Tick()
	}
	snap := waitState(t, s, StateFailed)
	if snap.Reason != models.ReasonTrialTimeout {
		t.Fatalf("reason = %q, want %q", snap.Reason, models.ReasonTrialTimeout)
	}
}

func TestSessionTimerExpiryFailsTheGame(t *testing.T) {
	rules := baseRules()
	rules.SessionSeconds = 2
	s, tickers := newTestSession(&stubVariant{rules: rules})
	s.Start()

	// The session countdown is the first ticker created.
	sessionTicker := tickers.at(0)
	sessionTicker.Tick()
	sessionTicker.Tick()

	snap := waitState(t, s, StateFailed)
	if snap.Reason != models.ReasonTimeExhausted {
		t.Fatalf("reason = %q, want %q", snap.Reason, models.ReasonTimeExhausted)
	}
}

func TestRestartReturnsToNotStarted(t *testing.T) {
	v := &stubVariant{rules: baseRules()}
	s, tickers := newTestSession(v)
	s.Start()
	answer(t, s, true)
	stepFeedback(t, s, tickers)
	waitState(t, s, StateAwaiting)
	answer(t, s, false)

	s.Restart()
	snap := s.Snapshot()
	if snap.State != StateNotStarted {
		t.Fatalf("state = %q, want not_started", snap.State)
	}
	if snap.Score != 0 || snap.TrialsCompleted != 0 || snap.ConsecutiveFailures != 0 {
		t.Fatalf("counters not cleared: %+v", snap)
	}
	if v.resets != 1 {
		t.Fatalf("variant resets = %d, want 1", v.resets)
	}

	// A restarted session plays again from scratch.
	if err := s.Start(); err != nil {
		t.Fatalf("Start after Restart: %v", err)
	}
	if snap := s.Snapshot(); snap.State != StateAwaiting || snap.Level != 1 {
		t.Fatalf("restarted session snapshot = %+v", snap)
	}
}

func TestDisposedSessionIgnoresTimers(t *testing.T) {
	s, tickers := newTestSession(&stubVariant{rules: baseRules()})
	s.Start()
	s.Dispose()

	for _, ticker := range []*timer.ManualTicker{tickers.at(0), tickers.last()} {
		ticker.Tick()
	}
	time.Sleep(20 * time.Millisecond)
	if snap := s.Snapshot(); snap.State != StateAwaiting {
		t.Fatalf("disposed session mutated to %q", snap.State)
	}
	if snap := s.Snapshot(); snap.Result != nil {
		t.Fatal("disposed session must not produce a result")
	}
}

func TestTerminalResultIsPersistedThroughSinks(t *testing.T) {
	saved := make(chan *models.GameResult, 1)
	progress := make(chan int, 1)
	sinks := Sinks{
		SaveResult: func(ctx context.Context, result *models.GameResult, rows []models.TrialRow) error {
			saved <- result
			return nil
		},
		SaveProgress: func(ctx context.Context, userID int, domain string, score int) error {
			progress <- score
			return nil
		},
	}

	rules := baseRules()
	rules.TrialLimit = 1
	tlog := &tickerLog{}
	co := timer.NewCoordinator(tlog.factory)
	s := NewSession("persist-test", 42, &stubVariant{rules: rules}, co, nil, sinks)
	s.Start()
	answer(t, s, true)
	stepFeedback(t, s, tlog)
	waitState(t, s, StateCompleted)

	select {
	case result := <-saved:
		if result.UserID != 42 {
			t.Fatalf("result user = %d, want 42", result.UserID)
		}
		if result.Score != 100 {
			t.Fatalf("result score = %d, want 100", result.Score)
		}
	case <-time.After(time.Second):
		t.Fatal("result was never saved")
	}
	select {
	case score := <-progress:
		if score != 100 {
			t.Fatalf("progress score = %d, want 100", score)
		}
	case <-time.After(time.Second):
		t.Fatal("progress was never updated")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.Snapshot().Saved {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("saved flag never set")
}

func TestAnonymousSessionSkipsPersistence(t *testing.T) {
	called := make(chan struct{}, 1)
	sinks := Sinks{
		SaveResult: func(ctx context.Context, result *models.GameResult, rows []models.TrialRow) error {
			called <- struct{}{}
			return nil
		},
	}
	rules := baseRules()
	rules.TrialLimit = 1
	tlog := &tickerLog{}
	co := timer.NewCoordinator(tlog.factory)
	s := NewSession("anon-test", 0, &stubVariant{rules: rules}, co, nil, sinks)
	s.Start()
	answer(t, s, true)
	stepFeedback(t, s, tlog)
	waitState(t, s, StateCompleted)

	select {
	case <-called:
		t.Fatal("anonymous result must not be persisted")
	case <-time.After(50 * time.Millisecond):
	}
}
