package game

import (
	"encoding/json"
	"errors"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// shapesGame asks the player to judge statements about the relative
// position of two shapes. Three correct in a row raise the level; a
// timeout drops it back one.
type shapesGame struct {
	gen     *trials.Generator
	current *trials.ShapeTrial
}

func init() {
	Register("shapes", func(_ *models.ContentPack, gen *trials.Generator, _ Options) Variant {
		return &shapesGame{gen: gen}
	})
}

func (g *shapesGame) Name() string   { return "shapes" }
func (g *shapesGame) Domain() string { return "reasoning" }

func (g *shapesGame) Rules() Rules {
	return Rules{
		StartLevel:         levels.ShapesStartLevel,
		MaxLevel:           levels.ShapesMaxLevel,
		FailureLimit:       3,
		Advance:            AdvanceOnStreak,
		StreakToAdvance:    3,
		Timeout:            TimeoutCountsWrong,
		DropLevelOnTimeout: true,
		LevelWeighted:      true,
		LevelWeightPct:     50,
		SessionSeconds:     levels.SessionSeconds,
		FeedbackSeconds:    levels.FeedbackSeconds,
	}
}

func (g *shapesGame) Reset() { g.current = nil }

func (g *shapesGame) Begin(level int) (int, bool) {
	t, err := g.gen.NewShapeTrial(levels.ShapesPoolSize(level))
	if err != nil {
		return level, false
	}
	g.current = t
	return level, true
}

func (g *shapesGame) PresentSeconds(int) int     { return 0 }
func (g *shapesGame) AnswerSeconds(level int) int { return levels.ShapesAnswerSeconds(level) }

func (g *shapesGame) PresentView() View { return nil }

func (g *shapesGame) ResponseView() View {
	return View{
		"leftShape":  g.current.LeftShape,
		"rightShape": g.current.RightShape,
		"statement":  g.current.Statement,
	}
}

type shapesAnswer struct {
	Answer *bool `json:"answer"`
}

func (g *shapesGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans shapesAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}
	if ans.Answer == nil {
		return false, nil, errors.New("missing answer field")
	}
	return *ans.Answer == g.current.Truth, *ans.Answer, nil
}

func (g *shapesGame) Stimulus() any { return g.current }
