// Package results reduces a finished session's trial history and counters
// into the result record handed to persistence.
package results

import (
	"encoding/json"
	"math"
	"time"

	"cognitrain-go/internal/models"
)

// Params carries everything the reduction needs. History may be empty;
// every derived metric then comes out zero rather than NaN.
type Params struct {
	Game            string
	Domain          string
	StartLevel      int
	MaxLevel        int
	MaxLevelReached int
	// LevelWeightPct blends level progress into the composite score;
	// zero means the score is pure accuracy.
	LevelWeightPct int
	Correct        int
	Attempted      int
	Start          time.Time
	End            time.Time
	Reason         models.TerminationReason
	History        []models.TrialEntry
	Submetrics     map[string]float64
}

// Qualitative score bands, checked from the highest threshold downward.
const (
	advancedThreshold     = 80
	intermediateThreshold = 50
)

// RoundPct divides num by den and rounds to the nearest integer
// percentage, half up. A zero denominator yields 0.
func RoundPct(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Floor(num/den*100 + 0.5))
}

// AccuracyPct is the rounded percentage of correct answers.
func AccuracyPct(correct, attempted int) int {
	return RoundPct(float64(correct), float64(attempted))
}

// LevelPct is the rounded share of the level range the player climbed.
func LevelPct(start, max, reached int) int {
	if reached < start {
		reached = start
	}
	if reached > max {
		reached = max
	}
	return RoundPct(float64(reached-start), float64(max-start))
}

// CompositeScore blends level progress and accuracy with the configured
// weight. weightPct 0 returns accuracy unchanged.
func CompositeScore(weightPct, levelPct, accuracyPct int) int {
	if weightPct <= 0 {
		return accuracyPct
	}
	blended := float64(weightPct*levelPct+(100-weightPct)*accuracyPct) / 100
	return int(math.Floor(blended + 0.5))
}

// Band maps a 0-100 score onto a qualitative level. The highest satisfied
// band wins.
func Band(score int) models.QualitativeLevel {
	switch {
	case score >= advancedThreshold:
		return models.LevelAdvanced
	case score >= intermediateThreshold:
		return models.LevelIntermediate
	default:
		return models.LevelBasic
	}
}

// Aggregate reduces a session into its result record. Called exactly once
// per session, strictly after every timer has been cancelled.
func Aggregate(p Params) *models.GameResult {
	accuracy := AccuracyPct(p.Correct, p.Attempted)
	levelPct := LevelPct(p.StartLevel, p.MaxLevel, p.MaxLevelReached)
	score := CompositeScore(p.LevelWeightPct, levelPct, accuracy)

	elapsed := 0
	if !p.Start.IsZero() && p.End.After(p.Start) {
		elapsed = int(math.Floor(p.End.Sub(p.Start).Seconds() + 0.5))
	}

	details := models.ResultDetails{
		History:    p.History,
		Submetrics: latencySubmetrics(p.History, p.Submetrics),
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = json.RawMessage("{}")
	}

	return &models.GameResult{
		Game:           p.Game,
		Domain:         p.Domain,
		Level:          Band(score),
		Score:          score,
		ElapsedSeconds: elapsed,
		Correct:        p.Correct,
		Total:          p.Attempted,
		Reason:         p.Reason,
		RawData:        raw,
		CreatedAt:      p.End,
	}
}
