// Package game runs the round/level state machine every mini-game shares:
// trial presentation, answer collection, feedback, level advancement and
// termination, with the session and trial timers driving expiries.
package game

// TimeoutPolicy says what a trial-timer expiry means for the game.
type TimeoutPolicy int

const (
	// TimeoutCountsWrong grades an expired trial as an incorrect answer.
	TimeoutCountsWrong TimeoutPolicy = iota
	// TimeoutFatal terminates the session on the first expired trial.
	TimeoutFatal
)

// AdvancePolicy says how the level moves after correct answers.
type AdvancePolicy int

const (
	// AdvanceOnStreak raises the level after an exact run of correct
	// answers at the current level.
	AdvanceOnStreak AdvancePolicy = iota
	// AdvanceOnGroupAccuracy raises the level when the current level's
	// trial pool is exhausted with accuracy at or above the threshold.
	AdvanceOnGroupAccuracy
	// AdvanceNever leaves level control to the trial source.
	AdvanceNever
)

// Rules is the per-game parameterization of the shared state machine.
type Rules struct {
	StartLevel int
	MaxLevel   int

	// FailureLimit is the consecutive-failure count that terminates the
	// session.
	FailureLimit int

	Advance          AdvancePolicy
	StreakToAdvance  int
	GroupAccuracyPct int

	Timeout TimeoutPolicy
	// DropLevelOnTimeout lowers the level by one, floored at StartLevel,
	// when a trial is failed by timer expiry rather than a wrong answer.
	DropLevelOnTimeout bool

	// LevelWeighted makes each correct answer worth the current level in
	// raw points instead of one.
	LevelWeighted bool
	// LevelWeightPct blends level progress into the 0-100 composite
	// score; zero keeps the score a pure accuracy percentage.
	LevelWeightPct int

	SessionSeconds  int
	FeedbackSeconds int

	// TrialLimit caps the number of trials; zero means unbounded.
	TrialLimit int
}
