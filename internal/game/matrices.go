package game

import (
	"encoding/json"
	"errors"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// matricesGame walks the pre-authored pattern list in order; the level
// follows each pattern's authored level. Consuming the whole list
// completes the game.
type matricesGame struct {
	deck     *trials.MatrixDeck
	maxLevel int
	current  *models.MatrixPattern
}

func init() {
	Register("matrices", func(pack *models.ContentPack, _ *trials.Generator, _ Options) Variant {
		maxLevel := levels.MatricesStartLevel
		for _, p := range pack.MatrixPatterns {
			if p.Level > maxLevel {
				maxLevel = p.Level
			}
		}
		return &matricesGame{deck: trials.NewMatrixDeck(pack.MatrixPatterns), maxLevel: maxLevel}
	})
}

func (g *matricesGame) Name() string   { return "matrices" }
func (g *matricesGame) Domain() string { return "reasoning" }

func (g *matricesGame) Rules() Rules {
	return Rules{
		StartLevel:      levels.MatricesStartLevel,
		MaxLevel:        g.maxLevel,
		FailureLimit:    3,
		Advance:         AdvanceNever,
		Timeout:         TimeoutCountsWrong,
		SessionSeconds:  levels.SessionSeconds,
		FeedbackSeconds: levels.FeedbackSeconds,
	}
}

func (g *matricesGame) Reset() {
	g.deck.Reset()
	g.current = nil
}

func (g *matricesGame) Begin(level int) (int, bool) {
	p := g.deck.Next()
	if p == nil {
		return level, false
	}
	g.current = p
	return p.Level, true
}

func (g *matricesGame) PresentSeconds(int) int      { return 0 }
func (g *matricesGame) AnswerSeconds(level int) int { return levels.MatricesAnswerSeconds(level) }

func (g *matricesGame) PresentView() View { return nil }

func (g *matricesGame) ResponseView() View {
	return View{
		"id":      g.current.ID,
		"image":   g.current.Image,
		"options": g.current.Options,
	}
}

type matricesAnswer struct {
	Option *int `json:"option"`
}

func (g *matricesGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans matricesAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}
	if ans.Option == nil {
		return false, nil, errors.New("missing option field")
	}
	return *ans.Option == g.current.Answer, *ans.Option, nil
}

func (g *matricesGame) Stimulus() any { return g.current }
