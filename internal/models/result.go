package models

import (
	"encoding/json"
	"time"
)

// TerminationReason says why a game session ended.
type TerminationReason string

const (
	ReasonCompleted         TerminationReason = "completed"
	ReasonConsecutiveErrors TerminationReason = "too_many_consecutive_errors"
	ReasonTimeExhausted     TerminationReason = "time_exhausted"
	ReasonTrialTimeout      TerminationReason = "trial_timeout"
	ReasonBelowThreshold    TerminationReason = "below_pass_threshold"
)

// QualitativeLevel bands a 0-100 score.
type QualitativeLevel string

const (
	LevelBasic        QualitativeLevel = "basic"
	LevelIntermediate QualitativeLevel = "intermediate"
	LevelAdvanced     QualitativeLevel = "advanced"
)

// FailureCause distinguishes how a trial was failed. A wrong answer and a
// timer expiry are different causes with different level consequences.
type FailureCause string

const (
	CauseAnswered FailureCause = "answered"
	CauseTimeout  FailureCause = "timeout"
)

// TrialEntry records one completed trial: what was shown, what the player
// did, whether it was right and how fast it went.
type TrialEntry struct {
	Number           int          `json:"number"`
	Level            int          `json:"level"`
	Stimulus         any          `json:"stimulus"`
	Response         any          `json:"response,omitempty"`
	Correct          bool         `json:"correct"`
	Cause            FailureCause `json:"cause"`
	LatencySeconds   float64      `json:"latencySeconds"`
	RemainingSeconds int          `json:"remainingSeconds"`
}

// ResultDetails is the game-specific payload stored alongside a result:
// the full trial history plus derived sub-metrics.
type ResultDetails struct {
	History    []TrialEntry       `json:"history"`
	Submetrics map[string]float64 `json:"submetrics,omitempty"`
}

// GameResult is the terminal artifact of one game session.
type GameResult struct {
	ID             int
	UserID         int
	Game           string
	Domain         string
	Level          QualitativeLevel
	Score          int
	ElapsedSeconds int
	Correct        int
	Total          int
	Reason         TerminationReason
	RawData        json.RawMessage `gorm:"type:jsonb"`
	CreatedAt      time.Time
}

// TrialRow is the granular per-trial record persisted with a result.
type TrialRow struct {
	ID               int
	ResultID         int
	Number           int
	Level            int
	Correct          bool
	Cause            string
	LatencySeconds   float64
	RemainingSeconds int
	Stimulus         json.RawMessage `gorm:"type:jsonb"`
	Response         json.RawMessage `gorm:"type:jsonb"`
}

// TrialRowsFromHistory converts an in-memory trial history into rows.
func TrialRowsFromHistory(history []TrialEntry) []TrialRow {
	rows := make([]TrialRow, 0, len(history))
	for _, e := range history {
		rows = append(rows, TrialRow{
			Number:           e.Number,
			Level:            e.Level,
			Correct:          e.Correct,
			Cause:            string(e.Cause),
			LatencySeconds:   e.LatencySeconds,
			RemainingSeconds: e.RemainingSeconds,
			Stimulus:         marshalOrEmpty(e.Stimulus),
			Response:         marshalOrEmpty(e.Response),
		})
	}
	return rows
}

func marshalOrEmpty(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
