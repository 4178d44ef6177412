package game

import (
	"encoding/json"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// spanGame flashes a sequence over a fixed circle board and asks the
// player to tap it back in order. The board is placed once per run; the
// sequence grows one element per level.
type spanGame struct {
	gen     *trials.Generator
	diff    levels.SpanDifficulty
	cfg     levels.SpanConfig
	circles []trials.CirclePosition
	current *spanStimulus
}

type spanStimulus struct {
	Circles  []trials.CirclePosition `json:"circles"`
	Sequence []int                   `json:"sequence"`
}

func init() {
	Register("span", func(_ *models.ContentPack, gen *trials.Generator, opts Options) Variant {
		diff := opts.Difficulty
		if diff == "" {
			diff = levels.SpanBasic
		}
		return &spanGame{gen: gen, diff: diff, cfg: levels.SpanConfigFor(diff)}
	})
}

func (g *spanGame) Name() string   { return "span" }
func (g *spanGame) Domain() string { return "attention" }

func (g *spanGame) Rules() Rules {
	return Rules{
		StartLevel:      levels.SpanStartLevel,
		MaxLevel:        levels.SpanMaxLevel,
		FailureLimit:    2,
		Advance:         AdvanceOnStreak,
		StreakToAdvance: 1,
		Timeout:         TimeoutCountsWrong,
		LevelWeightPct:  60,
		SessionSeconds:  levels.SessionSeconds,
		FeedbackSeconds: levels.FeedbackSeconds,
	}
}

func (g *spanGame) Reset() {
	g.circles = nil
	g.current = nil
}

func (g *spanGame) Begin(level int) (int, bool) {
	if g.circles == nil {
		g.circles = g.gen.Circles(g.cfg.Circles, levels.SpanMinDistance)
	}
	g.current = &spanStimulus{
		Circles:  g.circles,
		Sequence: g.gen.Sequence(len(g.circles), levels.SpanSequenceLength(g.diff, level)),
	}
	return level, true
}

func (g *spanGame) PresentSeconds(level int) int { return levels.SpanDisplaySeconds(g.diff, level) }
func (g *spanGame) AnswerSeconds(level int) int  { return levels.SpanAnswerSeconds(g.diff, level) }

func (g *spanGame) PresentView() View {
	return View{"circles": g.current.Circles, "sequence": g.current.Sequence}
}

func (g *spanGame) ResponseView() View {
	return View{"circles": g.current.Circles}
}

type spanAnswer struct {
	Sequence []int `json:"sequence"`
}

func (g *spanGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans spanAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}

	if len(ans.Sequence) != len(g.current.Sequence) {
		return false, ans.Sequence, nil
	}
	for i, idx := range ans.Sequence {
		if idx != g.current.Sequence[i] {
			return false, ans.Sequence, nil
		}
	}
	return true, ans.Sequence, nil
}

func (g *spanGame) Stimulus() any { return g.current }
