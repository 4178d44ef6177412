package trials

import "cognitrain-go/internal/models"

// MatrixDeck walks a level-ordered pattern list in sequence. The cursor
// belongs to the deck instance, so concurrent sessions never share
// consumption state.
type MatrixDeck struct {
	patterns []models.MatrixPattern
	next     int
}

func NewMatrixDeck(patterns []models.MatrixPattern) *MatrixDeck {
	return &MatrixDeck{patterns: patterns}
}

// Next returns the next pattern, or nil once the list is exhausted.
func (d *MatrixDeck) Next() *models.MatrixPattern {
	if d.next >= len(d.patterns) {
		return nil
	}
	p := d.patterns[d.next]
	d.next++
	return &p
}

// Remaining reports how many patterns are left.
func (d *MatrixDeck) Remaining() int {
	return len(d.patterns) - d.next
}

// Reset rewinds the deck to the first pattern.
func (d *MatrixDeck) Reset() {
	d.next = 0
}

// BalanceDeck serves the pre-authored balance exercises, one per-level
// list at a time, each consumed in authored order.
type BalanceDeck struct {
	pack *models.ContentPack
	next map[int]int
}

func NewBalanceDeck(pack *models.ContentPack) *BalanceDeck {
	return &BalanceDeck{pack: pack, next: make(map[int]int)}
}

// Next returns the next exercise for a level, or nil once that level's
// list is exhausted or the level has no authored exercises.
func (d *BalanceDeck) Next(level int) *models.BalanceExercise {
	exercises := d.pack.BalanceExercisesFor(level)
	i := d.next[level]
	if i >= len(exercises) {
		return nil
	}
	d.next[level] = i + 1
	ex := exercises[i]
	return &ex
}

// Reset rewinds every level's cursor.
func (d *BalanceDeck) Reset() {
	d.next = make(map[int]int)
}

// VerifyBalanceAnswer reports whether the chosen option matches the
// recorded correct one. Both the shape kind and the count must match.
func VerifyBalanceAnswer(ex *models.BalanceExercise, shape string, count int) bool {
	if ex.Answer < 0 || ex.Answer >= len(ex.Options) {
		return false
	}
	want := ex.Options[ex.Answer]
	return want.Shape == shape && want.Count == count
}
