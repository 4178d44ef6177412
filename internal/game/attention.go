package game

import (
	"encoding/json"
	"errors"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// attentionGame runs a fixed block of cued trials. A spatial cue flashes
// on one side, then the target appears; most cues are valid, so reaction
// times on invalid trials carry the cueing cost.
type attentionGame struct {
	gen     *trials.Generator
	current *trials.AttentionTrial
}

func init() {
	Register("attention", func(_ *models.ContentPack, gen *trials.Generator, _ Options) Variant {
		return &attentionGame{gen: gen}
	})
}

func (g *attentionGame) Name() string   { return "attention" }
func (g *attentionGame) Domain() string { return "attention" }

func (g *attentionGame) Rules() Rules {
	return Rules{
		StartLevel:      1,
		MaxLevel:        1,
		FailureLimit:    3,
		Advance:         AdvanceNever,
		Timeout:         TimeoutCountsWrong,
		TrialLimit:      levels.AttentionTrialCount,
		SessionSeconds:  levels.SessionSeconds,
		FeedbackSeconds: levels.FeedbackSeconds,
	}
}

func (g *attentionGame) Reset() { g.current = nil }

func (g *attentionGame) Begin(level int) (int, bool) {
	g.current = g.gen.NewAttentionTrial(g.gen.RollCongruent())
	return level, true
}

func (g *attentionGame) PresentSeconds(int) int { return 1 }
func (g *attentionGame) AnswerSeconds(int) int  { return levels.AttentionResponseSeconds }

// PresentView exposes only the cue; the target side stays hidden until
// the response phase.
func (g *attentionGame) PresentView() View {
	return View{"cueSide": g.current.CueSide}
}

func (g *attentionGame) ResponseView() View {
	return View{
		"cueSide":    g.current.CueSide,
		"targetSide": g.current.TargetSide,
	}
}

type attentionAnswer struct {
	Side string `json:"side"`
}

func (g *attentionGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans attentionAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}
	if ans.Side != "left" && ans.Side != "right" {
		return false, nil, errors.New("side must be left or right")
	}
	return ans.Side == g.current.TargetSide, ans.Side, nil
}

func (g *attentionGame) Stimulus() any { return g.current }

// Summarize reports mean reaction times for validly and invalidly cued
// trials plus the resulting cueing effect, correct answers only.
func (g *attentionGame) Summarize(history []models.TrialEntry) map[string]float64 {
	var congSum, incongSum float64
	var congN, incongN int
	for _, entry := range history {
		if !entry.Correct {
			continue
		}
		trial, ok := entry.Stimulus.(*trials.AttentionTrial)
		if !ok {
			continue
		}
		if trial.Congruent {
			congSum += entry.LatencySeconds
			congN++
		} else {
			incongSum += entry.LatencySeconds
			incongN++
		}
	}
	out := make(map[string]float64, 3)
	if congN > 0 {
		out["congruentMeanSeconds"] = congSum / float64(congN)
	}
	if incongN > 0 {
		out["incongruentMeanSeconds"] = incongSum / float64(incongN)
	}
	if congN > 0 && incongN > 0 {
		out["cueingEffectSeconds"] = incongSum/float64(incongN) - congSum/float64(congN)
	}
	return out
}
