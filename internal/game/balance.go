package game

import (
	"encoding/json"
	"errors"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// balanceGame serves each level's exercise list in order. Finishing a
// level's list triggers the group accuracy check in the state machine:
// at least 70% correct unlocks the next level, less ends the game.
type balanceGame struct {
	deck    *trials.BalanceDeck
	current *models.BalanceExercise
}

func init() {
	Register("balance", func(pack *models.ContentPack, _ *trials.Generator, _ Options) Variant {
		return &balanceGame{deck: trials.NewBalanceDeck(pack)}
	})
}

func (g *balanceGame) Name() string   { return "balance" }
func (g *balanceGame) Domain() string { return "reasoning" }

func (g *balanceGame) Rules() Rules {
	return Rules{
		StartLevel:       levels.BalanceStartLevel,
		MaxLevel:         levels.BalanceMaxLevel,
		FailureLimit:     3,
		Advance:          AdvanceOnGroupAccuracy,
		GroupAccuracyPct: 70,
		Timeout:          TimeoutCountsWrong,
		LevelWeighted:    true,
		LevelWeightPct:   50,
		SessionSeconds:   levels.SessionSeconds,
		FeedbackSeconds:  levels.FeedbackSeconds,
	}
}

func (g *balanceGame) Reset() {
	g.deck.Reset()
	g.current = nil
}

func (g *balanceGame) Begin(level int) (int, bool) {
	ex := g.deck.Next(level)
	if ex == nil {
		return level, false
	}
	g.current = ex
	return level, true
}

func (g *balanceGame) PresentSeconds(int) int      { return 0 }
func (g *balanceGame) AnswerSeconds(level int) int { return levels.BalanceAnswerSeconds(level) }

func (g *balanceGame) PresentView() View { return nil }

func (g *balanceGame) ResponseView() View {
	return View{
		"id":       g.current.ID,
		"leftPan":  g.current.LeftPan,
		"rightPan": g.current.RightPan,
		"question": g.current.Question,
		"options":  g.current.Options,
	}
}

type balanceAnswer struct {
	Shape string `json:"shape"`
	Count *int   `json:"count"`
}

func (g *balanceGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans balanceAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}
	if ans.Shape == "" || ans.Count == nil {
		return false, nil, errors.New("missing shape or count field")
	}
	correct := trials.VerifyBalanceAnswer(g.current, ans.Shape, *ans.Count)
	return correct, map[string]any{"shape": ans.Shape, "count": *ans.Count}, nil
}

func (g *balanceGame) Stimulus() any { return g.current }
