// Package trials produces one round's content for each game: a stimulus,
// its correct answer and any distractors. Generators are the only place
// randomness enters the games; sequential material (matrices, balance
// exercises) is consumed through per-instance decks instead.
package trials

import (
	"fmt"
	"math/rand"
	"time"
)

// ShapePool is the full set of shapes the comparison game can draw from.
// The level policy decides how much of the prefix is in play.
var ShapePool = []string{
	"circle", "square", "triangle", "star", "heart",
	"moon", "diamond", "cross", "arrow", "clover",
}

// Generator wraps a pseudo-random source for trial construction.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// ShapeTrial is one statement about the relative position of two shapes.
// The statement is built from one of four templates (positive/negative ×
// true/false) and is always internally consistent: Truth can be recomputed
// from the placement, the claim and the negation.
type ShapeTrial struct {
	LeftShape  string `json:"leftShape"`
	RightShape string `json:"rightShape"`
	Subject    string `json:"subject"`
	Object     string `json:"object"`
	ClaimsLeft bool   `json:"claimsLeft"`
	Negated    bool   `json:"negated"`
	Statement  string `json:"statement"`
	Truth      bool   `json:"-"`
}

// NewShapeTrial builds a statement trial from the first poolSize shapes.
// The two shapes are always distinct.
func (g *Generator) NewShapeTrial(poolSize int) (*ShapeTrial, error) {
	if poolSize < 2 {
		return nil, fmt.Errorf("shape pool size %d is too small", poolSize)
	}
	if poolSize > len(ShapePool) {
		poolSize = len(ShapePool)
	}

	first := g.rnd.Intn(poolSize)
	second := first
	for second == first {
		second = g.rnd.Intn(poolSize)
	}

	left, right := ShapePool[first], ShapePool[second]
	if g.rnd.Intn(2) == 0 {
		left, right = right, left
	}

	subject, object := left, right
	if g.rnd.Intn(2) == 0 {
		subject, object = right, left
	}

	positive := g.rnd.Intn(2) == 0
	negated := false
	if !positive {
		// Negation is applied probabilistically, never when the roll
		// forced a positive phrasing.
		negated = g.rnd.Intn(2) == 0
	}
	claimsLeft := g.rnd.Intn(2) == 0

	t := &ShapeTrial{
		LeftShape:  left,
		RightShape: right,
		Subject:    subject,
		Object:     object,
		ClaimsLeft: claimsLeft,
		Negated:    negated,
	}
	t.Statement = t.buildStatement()
	t.Truth = t.Evaluate()
	return t, nil
}

func (t *ShapeTrial) buildStatement() string {
	side := "left"
	if !t.ClaimsLeft {
		side = "right"
	}
	if t.Negated {
		return fmt.Sprintf("The %s is not to the %s of the %s.", t.Subject, side, t.Object)
	}
	return fmt.Sprintf("The %s is to the %s of the %s.", t.Subject, side, t.Object)
}

// Evaluate recomputes the statement's truth value from the placement.
func (t *ShapeTrial) Evaluate() bool {
	subjectIsLeft := t.Subject == t.LeftShape
	asserted := subjectIsLeft == t.ClaimsLeft
	if t.Negated {
		return !asserted
	}
	return asserted
}

// OriginalWords returns the deterministic prefix of the word pool the
// player must memorize.
func OriginalWords(pool []string, count int) []string {
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]string, count)
	copy(out, pool[:count])
	return out
}

// WordSea mixes the original words with randomly sampled distractors from
// the rest of the pool, up to maxExtra additions, and shuffles the result.
// The sea contains every original exactly once and no duplicates.
func (g *Generator) WordSea(pool, originals []string, maxExtra int) []string {
	used := make(map[string]bool, len(originals))
	for _, w := range originals {
		used[w] = true
	}

	candidates := make([]string, 0, len(pool))
	for _, w := range pool {
		if !used[w] {
			candidates = append(candidates, w)
		}
	}
	g.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if maxExtra > len(candidates) {
		maxExtra = len(candidates)
	}

	sea := make([]string, 0, len(originals)+maxExtra)
	sea = append(sea, originals...)
	sea = append(sea, candidates[:maxExtra]...)
	g.rnd.Shuffle(len(sea), func(i, j int) {
		sea[i], sea[j] = sea[j], sea[i]
	})
	return sea
}

// CirclePosition is a circle center in board percentage units.
type CirclePosition struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Circles places n circle targets by rejection sampling. Two circles
// collide only when both axis distances fall below minDist; a candidate
// colliding with any placed circle is re-rolled.
func (g *Generator) Circles(n int, minDist float64) []CirclePosition {
	placed := make([]CirclePosition, 0, n)
	for len(placed) < n {
		candidate := CirclePosition{
			Top:  5 + g.rnd.Float64()*90,
			Left: 5 + g.rnd.Float64()*90,
		}
		if collides(candidate, placed, minDist) {
			continue
		}
		placed = append(placed, candidate)
	}
	return placed
}

func collides(c CirclePosition, placed []CirclePosition, minDist float64) bool {
	for _, p := range placed {
		dTop := c.Top - p.Top
		if dTop < 0 {
			dTop = -dTop
		}
		dLeft := c.Left - p.Left
		if dLeft < 0 {
			dLeft = -dLeft
		}
		if dTop < minDist && dLeft < minDist {
			return true
		}
	}
	return false
}

// Sequence draws a recall sequence of the given length over the circle
// indices. Sampling is with replacement: repeats are allowed.
func (g *Generator) Sequence(positions, length int) []int {
	seq := make([]int, length)
	for i := range seq {
		seq[i] = g.rnd.Intn(positions)
	}
	return seq
}

// AttentionTrial is one cued-attention round: a cue arrow on one side and
// a target whose side depends on cue validity.
type AttentionTrial struct {
	Congruent  bool   `json:"congruent"`
	CueSide    string `json:"cueSide"`
	TargetSide string `json:"targetSide"`
}

// NewAttentionTrial builds a cued trial. With a congruent cue the target
// appears on the cued side, otherwise on the opposite one.
func (g *Generator) NewAttentionTrial(congruent bool) *AttentionTrial {
	cue := "left"
	if g.rnd.Intn(2) == 0 {
		cue = "right"
	}
	target := cue
	if !congruent {
		if cue == "left" {
			target = "right"
		} else {
			target = "left"
		}
	}
	return &AttentionTrial{Congruent: congruent, CueSide: cue, TargetSide: target}
}

// RollCongruent decides a trial's cue validity. Three out of four cues
// are congruent, the classic validity ratio for this task.
func (g *Generator) RollCongruent() bool {
	return g.rnd.Intn(4) > 0
}
