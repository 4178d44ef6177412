// Package levels maps a game level to its difficulty parameters.
// Every policy is deterministic: parameters move linearly from an initial
// value toward a final value as the level increases and clamp once the
// configured extreme is reached. Levels below a game's start level are
// treated as the start level.
package levels

// Shared session bounds.
const (
	SessionSeconds  = 300
	FeedbackSeconds = 1
)

// Shape comparison game.
const (
	ShapesStartLevel = 1
	ShapesMaxLevel   = 10

	shapesMinPool        = 2
	shapesMaxPool        = 10
	shapesInitialSeconds = 10
	shapesMinSeconds     = 4
)

// Verbal memory game.
const (
	VerbalStartLevel = 1
	VerbalMaxLevel   = 7

	verbalMinWords          = 6
	verbalMaxWords          = 12
	verbalInitialDisplaySec = 10
	verbalMinDisplaySec     = 5
	verbalInitialSelectSec  = 40
	verbalMinSelectSec      = 20

	// VerbalSeaExtra is the number of distractors the word sea may add on
	// top of the original list.
	VerbalSeaExtra = 12
)

// Matrix pattern game.
const (
	MatricesStartLevel     = 1
	matricesInitialSeconds = 60
	matricesMinSeconds     = 30
)

// Balance game.
const (
	BalanceStartLevel     = 1
	BalanceMaxLevel       = 3
	balanceInitialSeconds = 45
	balanceMinSeconds     = 25
)

// Cued attention game.
const (
	AttentionTrialCount      = 20
	AttentionResponseSeconds = 3
)

func clampLow(level, start int) int {
	if level < start {
		return start
	}
	return level
}

// ShapesPoolSize returns how many distinct shapes the comparison game
// draws from at the given level. Level 1 starts with two shapes and one
// more unlocks per level up to the full pool.
func ShapesPoolSize(level int) int {
	level = clampLow(level, ShapesStartLevel)
	size := shapesMinPool + (level - ShapesStartLevel)
	if size > shapesMaxPool {
		return shapesMaxPool
	}
	return size
}

// ShapesAnswerSeconds returns the per-statement answer window, shrinking
// one second per level down to the floor.
func ShapesAnswerSeconds(level int) int {
	level = clampLow(level, ShapesStartLevel)
	sec := shapesInitialSeconds - (level - ShapesStartLevel)
	if sec < shapesMinSeconds {
		return shapesMinSeconds
	}
	return sec
}

// VerbalWordCount returns how many words the player must memorize at the
// given level. One word is added per level until the cap is reached at
// level 7.
func VerbalWordCount(level int) int {
	level = clampLow(level, VerbalStartLevel)
	count := verbalMinWords + (level - VerbalStartLevel)
	if count > verbalMaxWords {
		return verbalMaxWords
	}
	return count
}

// VerbalDisplaySeconds returns how long the original words stay on screen.
func VerbalDisplaySeconds(level int) int {
	level = clampLow(level, VerbalStartLevel)
	sec := verbalInitialDisplaySec - (level - VerbalStartLevel)
	if sec < verbalMinDisplaySec {
		return verbalMinDisplaySec
	}
	return sec
}

// VerbalSelectionSeconds returns the window for picking words out of the sea.
func VerbalSelectionSeconds(level int) int {
	level = clampLow(level, VerbalStartLevel)
	sec := verbalInitialSelectSec - 2*(level-VerbalStartLevel)
	if sec < verbalMinSelectSec {
		return verbalMinSelectSec
	}
	return sec
}

// MatricesAnswerSeconds returns the per-pattern answer window.
func MatricesAnswerSeconds(level int) int {
	level = clampLow(level, MatricesStartLevel)
	sec := matricesInitialSeconds - 5*(level-MatricesStartLevel)
	if sec < matricesMinSeconds {
		return matricesMinSeconds
	}
	return sec
}

// BalanceAnswerSeconds returns the per-exercise answer window.
func BalanceAnswerSeconds(level int) int {
	level = clampLow(level, BalanceStartLevel)
	sec := balanceInitialSeconds - 5*(level-BalanceStartLevel)
	if sec < balanceMinSeconds {
		return balanceMinSeconds
	}
	return sec
}

// SpanDifficulty selects the board size and starting sequence length for
// the spatial span game.
type SpanDifficulty string

const (
	SpanBasic        SpanDifficulty = "basic"
	SpanIntermediate SpanDifficulty = "intermediate"
	SpanAdvanced     SpanDifficulty = "advanced"
)

// SpanConfig holds the fixed parameters of a span difficulty.
type SpanConfig struct {
	Circles         int
	InitialSequence int
}

const (
	SpanStartLevel = 1
	SpanMaxLevel   = 6

	// SpanMinDistance is the minimum separation between circle centers,
	// in board percentage units. Two circles collide only when BOTH axes
	// are closer than this.
	SpanMinDistance = 12.0
)

var spanConfigs = map[SpanDifficulty]SpanConfig{
	SpanBasic:        {Circles: 8, InitialSequence: 3},
	SpanIntermediate: {Circles: 10, InitialSequence: 4},
	SpanAdvanced:     {Circles: 12, InitialSequence: 5},
}

// SpanConfigFor returns the configuration for a difficulty, falling back
// to basic for unknown values.
func SpanConfigFor(d SpanDifficulty) SpanConfig {
	if cfg, ok := spanConfigs[d]; ok {
		return cfg
	}
	return spanConfigs[SpanBasic]
}

// SpanSequenceLength returns the recall sequence length at the given
// level: the difficulty's initial length plus one per level, capped at
// initial+5.
func SpanSequenceLength(d SpanDifficulty, level int) int {
	level = clampLow(level, SpanStartLevel)
	cfg := SpanConfigFor(d)
	length := cfg.InitialSequence + (level - SpanStartLevel)
	if max := cfg.InitialSequence + 5; length > max {
		return max
	}
	return length
}

// SpanDisplaySeconds returns how long the sequence is shown before recall:
// one second per element.
func SpanDisplaySeconds(d SpanDifficulty, level int) int {
	return SpanSequenceLength(d, level)
}

// SpanAnswerSeconds returns the recall window: three seconds per element.
func SpanAnswerSeconds(d SpanDifficulty, level int) int {
	return 3 * SpanSequenceLength(d, level)
}
