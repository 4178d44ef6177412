package game

import (
	"encoding/json"
	"fmt"
	"sort"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

// View is the client-facing description of a trial. Correct answers are
// never part of it.
type View map[string]any

// Variant supplies one game's trials and grading to the shared state
// machine. Implementations keep the current trial internally; the session
// serializes all access.
type Variant interface {
	Name() string
	Domain() string
	Rules() Rules

	// Reset clears sequential consumption state and any per-session
	// stimulus material.
	Reset()

	// Begin creates the trial for the level. It returns the effective
	// level of the trial (list-ordered games may move it) and false once
	// no trials remain.
	Begin(level int) (int, bool)

	// PresentSeconds is the stimulus display window before answers are
	// accepted; zero skips the presenting phase.
	PresentSeconds(level int) int
	AnswerSeconds(level int) int

	// PresentView is shown during the presenting phase, ResponseView
	// while awaiting the answer.
	PresentView() View
	ResponseView() View

	// Grade decodes and grades an answer for the current trial. A decode
	// failure leaves the trial unresolved.
	Grade(raw json.RawMessage) (correct bool, response any, err error)

	// Stimulus returns the full current trial for the history archive.
	Stimulus() any
}

// Summarizer is implemented by variants that derive extra sub-metrics
// from the finished trial history.
type Summarizer interface {
	Summarize(history []models.TrialEntry) map[string]float64
}

// Options tweaks variant construction.
type Options struct {
	Difficulty levels.SpanDifficulty
}

// Factory builds a variant instance over shared content and randomness.
type Factory func(pack *models.ContentPack, gen *trials.Generator, opts Options) Variant

// Info describes a registered game for listings.
type Info struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

var registry = make(map[string]Factory)

// Register adds a game variant factory. Called from init functions;
// panics on duplicate names.
func Register(name string, factory Factory) {
	if _, exists := registry[name]; exists {
		panic("game: duplicate variant " + name)
	}
	registry[name] = factory
}

// NewVariant instantiates a registered variant by name.
func NewVariant(name string, pack *models.ContentPack, gen *trials.Generator, opts Options) (Variant, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown game %q", name)
	}
	return factory(pack, gen, opts), nil
}

// List returns the registered games sorted by name.
func List(pack *models.ContentPack) []Info {
	infos := make([]Info, 0, len(registry))
	for name, factory := range registry {
		v := factory(pack, trials.New(), Options{})
		infos = append(infos, Info{Name: name, Domain: v.Domain()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
