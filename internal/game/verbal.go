package game

import (
	"encoding/json"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// verbalGame shows a word list to memorize, then asks the player to pick
// exactly those words back out of a shuffled sea with distractors.
type verbalGame struct {
	pack    *models.ContentPack
	gen     *trials.Generator
	current *verbalStimulus
}

type verbalStimulus struct {
	Originals []string `json:"originals"`
	Sea       []string `json:"sea"`
}

func init() {
	Register("verbal", func(pack *models.ContentPack, gen *trials.Generator, _ Options) Variant {
		return &verbalGame{pack: pack, gen: gen}
	})
}

func (g *verbalGame) Name() string   { return "verbal" }
func (g *verbalGame) Domain() string { return "memory" }

func (g *verbalGame) Rules() Rules {
	return Rules{
		StartLevel:      levels.VerbalStartLevel,
		MaxLevel:        levels.VerbalMaxLevel,
		FailureLimit:    2,
		Advance:         AdvanceOnStreak,
		StreakToAdvance: 1,
		Timeout:         TimeoutCountsWrong,
		SessionSeconds:  levels.SessionSeconds,
		FeedbackSeconds: levels.FeedbackSeconds,
	}
}

func (g *verbalGame) Reset() { g.current = nil }

func (g *verbalGame) Begin(level int) (int, bool) {
	originals := trials.OriginalWords(g.pack.WordPool, levels.VerbalWordCount(level))
	g.current = &verbalStimulus{
		Originals: originals,
		Sea:       g.gen.WordSea(g.pack.WordPool, originals, levels.VerbalSeaExtra),
	}
	return level, true
}

func (g *verbalGame) PresentSeconds(level int) int { return levels.VerbalDisplaySeconds(level) }
func (g *verbalGame) AnswerSeconds(level int) int  { return levels.VerbalSelectionSeconds(level) }

func (g *verbalGame) PresentView() View {
	return View{"words": g.current.Originals}
}

func (g *verbalGame) ResponseView() View {
	return View{"sea": g.current.Sea}
}

type verbalAnswer struct {
	Selected []string `json:"selected"`
}

// Grade passes the round only when the selection is exactly the original
// list: every original picked, nothing else.
func (g *verbalGame) Grade(raw json.RawMessage) (bool, any, error) {
	var ans verbalAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return false, nil, err
	}

	wanted := make(map[string]bool, len(g.current.Originals))
	for _, w := range g.current.Originals {
		wanted[w] = true
	}

	hits := 0
	falseAlarms := 0
	picked := make(map[string]bool, len(ans.Selected))
	for _, w := range ans.Selected {
		if picked[w] {
			continue
		}
		picked[w] = true
		if wanted[w] {
			hits++
		} else {
			falseAlarms++
		}
	}

	correct := hits == len(g.current.Originals) && falseAlarms == 0
	return correct, ans.Selected, nil
}

func (g *verbalGame) Stimulus() any { return g.current }

// Summarize derives recognition sub-metrics over the whole run: overall
// hit rate and false-alarm count.
func (g *verbalGame) Summarize(history []models.TrialEntry) map[string]float64 {
	totalTargets := 0
	totalHits := 0
	totalFalseAlarms := 0

	for _, entry := range history {
		stim, ok := entry.Stimulus.(*verbalStimulus)
		if !ok {
			continue
		}
		totalTargets += len(stim.Originals)

		selected, ok := entry.Response.([]string)
		if !ok {
			continue
		}
		wanted := make(map[string]bool, len(stim.Originals))
		for _, w := range stim.Originals {
			wanted[w] = true
		}
		seen := make(map[string]bool, len(selected))
		for _, w := range selected {
			if seen[w] {
				continue
			}
			seen[w] = true
			if wanted[w] {
				totalHits++
			} else {
				totalFalseAlarms++
			}
		}
	}

	hitRate := 0.0
	if totalTargets > 0 {
		hitRate = float64(totalHits) / float64(totalTargets)
	}
	return map[string]float64{
		"hitRate":     hitRate,
		"falseAlarms": float64(totalFalseAlarms),
	}
}
