package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatrixPattern is one pre-authored item of the matrix game: an image
// reference, its answer options and the index of the correct one.
// Patterns are consumed in list order, easiest level first.
type MatrixPattern struct {
	ID      string   `yaml:"id" json:"id"`
	Level   int      `yaml:"level" json:"level"`
	Image   string   `yaml:"image" json:"image"`
	Options []string `yaml:"options" json:"options"`
	Answer  int      `yaml:"answer" json:"-"`
}

// BalanceOption is one multiple-choice answer for a balance exercise:
// how many pieces of which shape restore equilibrium.
type BalanceOption struct {
	Shape string `yaml:"shape" json:"shape"`
	Count int    `yaml:"count" json:"count"`
}

// BalanceExercise is one pre-authored balance-scale configuration.
type BalanceExercise struct {
	ID       string          `yaml:"id" json:"id"`
	LeftPan  []BalanceOption `yaml:"left_pan" json:"leftPan"`
	RightPan []BalanceOption `yaml:"right_pan" json:"rightPan"`
	Question string          `yaml:"question" json:"question"`
	Options  []BalanceOption `yaml:"options" json:"options"`
	Answer   int             `yaml:"answer" json:"-"`
}

// BalanceLevel groups the exercises authored for one difficulty level.
type BalanceLevel struct {
	Level     int               `yaml:"level" json:"level"`
	Exercises []BalanceExercise `yaml:"exercises" json:"exercises"`
}

// ContentPack holds the static stimulus material for all games. A pack
// can be loaded from YAML to replace the built-in defaults.
type ContentPack struct {
	WordPool       []string        `yaml:"word_pool"`
	MatrixPatterns []MatrixPattern `yaml:"matrix_patterns"`
	BalanceLevels  []BalanceLevel  `yaml:"balance_levels"`
}

// LoadContentPack reads and parses a content pack YAML file.
func LoadContentPack(path string) (*ContentPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content pack: %w", err)
	}

	var pack ContentPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content pack YAML: %w", err)
	}

	if err := pack.Validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

// Validate checks the structural invariants the generators rely on.
func (p *ContentPack) Validate() error {
	if len(p.WordPool) < 24 {
		return fmt.Errorf("word pool needs at least 24 words, got %d", len(p.WordPool))
	}
	seen := make(map[string]bool, len(p.WordPool))
	for _, w := range p.WordPool {
		if seen[w] {
			return fmt.Errorf("word pool contains duplicate %q", w)
		}
		seen[w] = true
	}

	lastLevel := 0
	for i, pat := range p.MatrixPatterns {
		if pat.Level < lastLevel {
			return fmt.Errorf("matrix pattern %q breaks level ordering", pat.ID)
		}
		lastLevel = pat.Level
		if pat.Answer < 0 || pat.Answer >= len(pat.Options) {
			return fmt.Errorf("matrix pattern %d has answer index out of range", i)
		}
	}

	for _, lvl := range p.BalanceLevels {
		if len(lvl.Exercises) == 0 {
			return fmt.Errorf("balance level %d has no exercises", lvl.Level)
		}
		for _, ex := range lvl.Exercises {
			if ex.Answer < 0 || ex.Answer >= len(ex.Options) {
				return fmt.Errorf("balance exercise %q has answer index out of range", ex.ID)
			}
		}
	}
	return nil
}

// BalanceExercisesFor returns the exercise list authored for a level, or
// nil when the level has none.
func (p *ContentPack) BalanceExercisesFor(level int) []BalanceExercise {
	for _, lvl := range p.BalanceLevels {
		if lvl.Level == level {
			return lvl.Exercises
		}
	}
	return nil
}

// DefaultContent returns the built-in content pack.
func DefaultContent() *ContentPack {
	return &ContentPack{
		WordPool: []string{
			"river", "candle", "mirror", "garden", "pillow", "thunder",
			"velvet", "anchor", "lantern", "meadow", "copper", "whistle",
			"harbor", "ribbon", "saddle", "marble", "forest", "needle",
			"bucket", "shadow", "cherry", "ladder", "window", "pebble",
			"basket", "feather", "hammer", "island", "jacket", "kettle",
		},
		MatrixPatterns: defaultMatrixPatterns(),
		BalanceLevels:  defaultBalanceLevels(),
	}
}

func defaultMatrixPatterns() []MatrixPattern {
	opts := func(a, b, c, d string) []string { return []string{a, b, c, d} }
	return []MatrixPattern{
		{ID: "m1", Level: 1, Image: "matrix-01", Options: opts("piece-01a", "piece-01b", "piece-01c", "piece-01d"), Answer: 2},
		{ID: "m2", Level: 1, Image: "matrix-02", Options: opts("piece-02a", "piece-02b", "piece-02c", "piece-02d"), Answer: 0},
		{ID: "m3", Level: 1, Image: "matrix-03", Options: opts("piece-03a", "piece-03b", "piece-03c", "piece-03d"), Answer: 3},
		{ID: "m4", Level: 1, Image: "matrix-04", Options: opts("piece-04a", "piece-04b", "piece-04c", "piece-04d"), Answer: 1},
		{ID: "m5", Level: 2, Image: "matrix-05", Options: opts("piece-05a", "piece-05b", "piece-05c", "piece-05d"), Answer: 1},
		{ID: "m6", Level: 2, Image: "matrix-06", Options: opts("piece-06a", "piece-06b", "piece-06c", "piece-06d"), Answer: 3},
		{ID: "m7", Level: 2, Image: "matrix-07", Options: opts("piece-07a", "piece-07b", "piece-07c", "piece-07d"), Answer: 0},
		{ID: "m8", Level: 2, Image: "matrix-08", Options: opts("piece-08a", "piece-08b", "piece-08c", "piece-08d"), Answer: 2},
		{ID: "m9", Level: 3, Image: "matrix-09", Options: opts("piece-09a", "piece-09b", "piece-09c", "piece-09d"), Answer: 1},
		{ID: "m10", Level: 3, Image: "matrix-10", Options: opts("piece-10a", "piece-10b", "piece-10c", "piece-10d"), Answer: 0},
		{ID: "m11", Level: 3, Image: "matrix-11", Options: opts("piece-11a", "piece-11b", "piece-11c", "piece-11d"), Answer: 3},
		{ID: "m12", Level: 3, Image: "matrix-12", Options: opts("piece-12a", "piece-12b", "piece-12c", "piece-12d"), Answer: 2},
	}
}

func defaultBalanceLevels() []BalanceLevel {
	w := func(shape string, count int) BalanceOption { return BalanceOption{Shape: shape, Count: count} }
	ex := func(id string, left, right []BalanceOption, question string, options []BalanceOption, answer int) BalanceExercise {
		return BalanceExercise{ID: id, LeftPan: left, RightPan: right, Question: question, Options: options, Answer: answer}
	}
	return []BalanceLevel{
		{
			Level: 1,
			Exercises: []BalanceExercise{
				ex("b1-1", []BalanceOption{w("cube", 2)}, []BalanceOption{w("sphere", 1)},
					"One sphere weighs as much as two cubes. How many cubes balance two spheres?",
					[]BalanceOption{w("cube", 2), w("cube", 4), w("cube", 6), w("sphere", 2)}, 1),
				ex("b1-2", []BalanceOption{w("cone", 3)}, []BalanceOption{w("cube", 1)},
					"One cube weighs as much as three cones. How many cones balance two cubes?",
					[]BalanceOption{w("cone", 3), w("cone", 5), w("cone", 6), w("cube", 3)}, 2),
				ex("b1-3", []BalanceOption{w("sphere", 2)}, []BalanceOption{w("pyramid", 1)},
					"One pyramid weighs as much as two spheres. How many spheres balance three pyramids?",
					[]BalanceOption{w("sphere", 4), w("sphere", 6), w("sphere", 3), w("pyramid", 6)}, 1),
				ex("b1-4", []BalanceOption{w("cube", 4)}, []BalanceOption{w("cylinder", 2)},
					"Two cylinders weigh as much as four cubes. How many cubes balance one cylinder?",
					[]BalanceOption{w("cube", 1), w("cube", 2), w("cube", 4), w("cylinder", 1)}, 1),
				ex("b1-5", []BalanceOption{w("cone", 2)}, []BalanceOption{w("sphere", 2)},
					"Two spheres weigh as much as two cones. How many cones balance four spheres?",
					[]BalanceOption{w("cone", 2), w("cone", 8), w("cone", 4), w("sphere", 4)}, 2),
				ex("b1-6", []BalanceOption{w("pyramid", 1), w("cube", 1)}, []BalanceOption{w("sphere", 3)},
					"Three spheres weigh as much as a pyramid plus a cube. If the pyramid weighs as much as two spheres, how many spheres balance the cube?",
					[]BalanceOption{w("sphere", 1), w("sphere", 2), w("sphere", 3), w("cube", 1)}, 0),
			},
		},
		{
			Level: 2,
			Exercises: []BalanceExercise{
				ex("b2-1", []BalanceOption{w("cube", 3), w("cone", 1)}, []BalanceOption{w("sphere", 2)},
					"Two spheres weigh as much as three cubes plus a cone. If the cone weighs as much as a cube, how many cubes balance one sphere?",
					[]BalanceOption{w("cube", 2), w("cube", 3), w("cube", 4), w("cube", 1)}, 0),
				ex("b2-2", []BalanceOption{w("cylinder", 2)}, []BalanceOption{w("pyramid", 3)},
					"Three pyramids weigh as much as two cylinders. How many pyramids balance six cylinders?",
					[]BalanceOption{w("pyramid", 6), w("pyramid", 9), w("pyramid", 12), w("cylinder", 9)}, 1),
				ex("b2-3", []BalanceOption{w("sphere", 4)}, []BalanceOption{w("cube", 2), w("cone", 2)},
					"Two cubes plus two cones weigh as much as four spheres. If cubes and cones weigh the same, how many spheres balance three cubes?",
					[]BalanceOption{w("sphere", 2), w("sphere", 3), w("sphere", 4), w("sphere", 6)}, 1),
				ex("b2-4", []BalanceOption{w("cone", 6)}, []BalanceOption{w("cylinder", 2)},
					"Two cylinders weigh as much as six cones. How many cones balance five cylinders?",
					[]BalanceOption{w("cone", 10), w("cone", 12), w("cone", 15), w("cone", 18)}, 2),
				ex("b2-5", []BalanceOption{w("pyramid", 2), w("sphere", 1)}, []BalanceOption{w("cube", 3)},
					"Three cubes weigh as much as two pyramids plus a sphere. If the sphere weighs as much as a cube, how many cubes balance one pyramid?",
					[]BalanceOption{w("cube", 1), w("cube", 2), w("cube", 3), w("pyramid", 1)}, 0),
				ex("b2-6", []BalanceOption{w("cube", 5)}, []BalanceOption{w("sphere", 2), w("cone", 1)},
					"Two spheres plus a cone weigh as much as five cubes. If the cone weighs as much as a cube, how many cubes balance one sphere?",
					[]BalanceOption{w("cube", 1), w("cube", 2), w("cube", 3), w("cube", 4)}, 1),
			},
		},
		{
			Level: 3,
			Exercises: []BalanceExercise{
				ex("b3-1", []BalanceOption{w("sphere", 3), w("cone", 2)}, []BalanceOption{w("cylinder", 4)},
					"Four cylinders weigh as much as three spheres plus two cones. If a cone weighs half a sphere, how many cylinders balance two spheres?",
					[]BalanceOption{w("cylinder", 1), w("cylinder", 2), w("cylinder", 3), w("cylinder", 4)}, 1),
				ex("b3-2", []BalanceOption{w("cube", 2), w("pyramid", 2)}, []BalanceOption{w("sphere", 6)},
					"Six spheres weigh as much as two cubes plus two pyramids. If a pyramid weighs twice a cube, how many spheres balance three cubes?",
					[]BalanceOption{w("sphere", 2), w("sphere", 3), w("sphere", 4), w("sphere", 6)}, 1),
				ex("b3-3", []BalanceOption{w("cylinder", 3)}, []BalanceOption{w("cone", 4), w("cube", 1)},
					"Four cones plus a cube weigh as much as three cylinders. If the cube weighs as much as two cones, how many cones balance one cylinder?",
					[]BalanceOption{w("cone", 1), w("cone", 2), w("cone", 3), w("cone", 4)}, 1),
				ex("b3-4", []BalanceOption{w("pyramid", 4)}, []BalanceOption{w("sphere", 2), w("cylinder", 2)},
					"Two spheres plus two cylinders weigh as much as four pyramids. If a cylinder weighs three pyramids, how many pyramids balance four spheres?",
					[]BalanceOption{w("pyramid", 2), w("pyramid", 4), w("pyramid", 6), w("sphere", 4)}, 0),
				ex("b3-5", []BalanceOption{w("cone", 5), w("cube", 1)}, []BalanceOption{w("sphere", 3)},
					"Three spheres weigh as much as five cones plus a cube. If the cube weighs as much as a cone, how many cones balance one sphere?",
					[]BalanceOption{w("cone", 1), w("cone", 2), w("cone", 3), w("cone", 6)}, 1),
				ex("b3-6", []BalanceOption{w("cylinder", 2), w("pyramid", 1)}, []BalanceOption{w("cube", 7)},
					"Seven cubes weigh as much as two cylinders plus a pyramid. If the pyramid weighs as much as a cube, how many cubes balance one cylinder?",
					[]BalanceOption{w("cube", 2), w("cube", 3), w("cube", 4), w("cube", 5)}, 1),
			},
		},
	}
}
