package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"cognitrain-go/internal/levels"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/trials"
)

func newVariant(t *testing.T, name string, opts Options) Variant {
	t.Helper()
	v, err := NewVariant(name, models.DefaultContent(), trials.NewSeeded(1), opts)
	if err != nil {
		t.Fatalf("NewVariant(%q): %v", name, err)
	}
	return v
}

func TestListContainsEveryGame(t *testing.T) {
	infos := List(models.DefaultContent())
	want := []string{"attention", "balance", "matrices", "shapes", "span", "verbal"}
	if len(infos) != len(want) {
		t.Fatalf("registered %d games, want %d", len(infos), len(want))
	}
	for i, name := range want {
		if infos[i].Name != name {
			t.Fatalf("game %d = %q, want %q (sorted)", i, infos[i].Name, name)
		}
	}
}

func TestNewVariantUnknownName(t *testing.T) {
	if _, err := NewVariant("bogus", models.DefaultContent(), trials.New(), Options{}); err == nil {
		t.Fatal("expected error for unknown game")
	}
}

func TestShapesGrading(t *testing.T) {
	v := newVariant(t, "shapes", Options{})
	if _, ok := v.Begin(1); !ok {
		t.Fatal("Begin failed")
	}

	trial := v.Stimulus().(*trials.ShapeTrial)
	payload := fmt.Sprintf(`{"answer":%v}`, trial.Truth)
	correct, _, err := v.Grade(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !correct {
		t.Fatal("true answer graded wrong")
	}

	payload = fmt.Sprintf(`{"answer":%v}`, !trial.Truth)
	correct, _, _ = v.Grade(json.RawMessage(payload))
	if correct {
		t.Fatal("false answer graded correct")
	}

	if _, _, err := v.Grade(json.RawMessage(`{}`)); err == nil {
		t.Fatal("missing answer must error")
	}

	view := v.ResponseView()
	if view["statement"] == "" {
		t.Fatal("response view must carry the statement")
	}
	if _, exposed := view["truth"]; exposed {
		t.Fatal("response view leaks the answer")
	}
}

func TestVerbalGradingExactSet(t *testing.T) {
	v := newVariant(t, "verbal", Options{})
	if _, ok := v.Begin(1); !ok {
		t.Fatal("Begin failed")
	}
	stim := v.Stimulus().(*verbalStimulus)
	if len(stim.Originals) != 6 {
		t.Fatalf("level 1 originals = %d, want 6", len(stim.Originals))
	}
	if len(stim.Sea) != 18 {
		t.Fatalf("sea = %d words, want 18", len(stim.Sea))
	}

	exact, _ := json.Marshal(map[string]any{"selected": stim.Originals})
	correct, _, err := v.Grade(exact)
	if err != nil || !correct {
		t.Fatalf("exact selection graded %v, %v", correct, err)
	}

	// One missing original fails.
	partial, _ := json.Marshal(map[string]any{"selected": stim.Originals[1:]})
	if correct, _, _ := v.Grade(partial); correct {
		t.Fatal("partial selection graded correct")
	}

	// One distractor on top of the full set fails.
	var distractor string
	wanted := make(map[string]bool)
	for _, w := range stim.Originals {
		wanted[w] = true
	}
	for _, w := range stim.Sea {
		if !wanted[w] {
			distractor = w
			break
		}
	}
	withExtra, _ := json.Marshal(map[string]any{"selected": append(append([]string{}, stim.Originals...), distractor)})
	if correct, _, _ := v.Grade(withExtra); correct {
		t.Fatal("false alarm graded correct")
	}

	// Duplicated picks of an original are not false alarms.
	dupes, _ := json.Marshal(map[string]any{"selected": append(append([]string{}, stim.Originals...), stim.Originals[0])})
	if correct, _, _ := v.Grade(dupes); !correct {
		t.Fatal("duplicate original graded wrong")
	}
}

func TestSpanBoardIsStableAcrossTrials(t *testing.T) {
	v := newVariant(t, "span", Options{Difficulty: levels.SpanIntermediate})
	v.Begin(1)
	first := v.Stimulus().(*spanStimulus)
	if len(first.Circles) != 10 {
		t.Fatalf("intermediate board = %d circles, want 10", len(first.Circles))
	}
	if len(first.Sequence) != 4 {
		t.Fatalf("level 1 sequence = %d, want 4", len(first.Sequence))
	}

	v.Begin(2)
	second := v.Stimulus().(*spanStimulus)
	if &first.Circles[0] != &second.Circles[0] {
		t.Fatal("board must not be re-placed between trials")
	}
	if len(second.Sequence) != 5 {
		t.Fatalf("level 2 sequence = %d, want 5", len(second.Sequence))
	}

	exact, _ := json.Marshal(map[string]any{"sequence": second.Sequence})
	if correct, _, err := v.Grade(exact); err != nil || !correct {
		t.Fatalf("exact recall graded %v, %v", correct, err)
	}
	reversed := make([]int, len(second.Sequence))
	for i, idx := range second.Sequence {
		reversed[len(reversed)-1-i] = idx
	}
	// Order matters unless the sequence happens to be a palindrome.
	palindrome := true
	for i := range second.Sequence {
		if second.Sequence[i] != reversed[i] {
			palindrome = false
			break
		}
	}
	if !palindrome {
		wrong, _ := json.Marshal(map[string]any{"sequence": reversed})
		if correct, _, _ := v.Grade(wrong); correct {
			t.Fatal("out-of-order recall graded correct")
		}
	}
}

func TestMatricesFollowsTheAuthoredList(t *testing.T) {
	pack := models.DefaultContent()
	v := newVariant(t, "matrices", Options{})

	for i, pattern := range pack.MatrixPatterns {
		level, ok := v.Begin(1)
		if !ok {
			t.Fatalf("pattern %d: unexpected exhaustion", i)
		}
		if level != pattern.Level {
			t.Fatalf("pattern %d: level %d, want authored %d", i, level, pattern.Level)
		}
		payload := fmt.Sprintf(`{"option":%d}`, pattern.Answer)
		if correct, _, err := v.Grade(json.RawMessage(payload)); err != nil || !correct {
			t.Fatalf("pattern %d: right option graded %v, %v", i, correct, err)
		}
	}
	if _, ok := v.Begin(1); ok {
		t.Fatal("deck should be exhausted after the full list")
	}

	v.Reset()
	if _, ok := v.Begin(1); !ok {
		t.Fatal("reset must rewind the deck")
	}
}

func TestMatricesViewHidesAnswer(t *testing.T) {
	v := newVariant(t, "matrices", Options{})
	v.Begin(1)
	view := v.ResponseView()
	if _, exposed := view["answer"]; exposed {
		t.Fatal("response view leaks the answer index")
	}
	if view["options"] == nil {
		t.Fatal("response view must carry the options")
	}
}

func TestBalanceGrading(t *testing.T) {
	v := newVariant(t, "balance", Options{})

	level, ok := v.Begin(1)
	if !ok || level != 1 {
		t.Fatalf("Begin = (%d, %v)", level, ok)
	}
	ex := v.Stimulus().(*models.BalanceExercise)
	want := ex.Options[ex.Answer]

	payload, _ := json.Marshal(map[string]any{"shape": want.Shape, "count": want.Count})
	if correct, _, err := v.Grade(payload); err != nil || !correct {
		t.Fatalf("right option graded %v, %v", correct, err)
	}

	wrongCount, _ := json.Marshal(map[string]any{"shape": want.Shape, "count": want.Count + 1})
	if correct, _, _ := v.Grade(wrongCount); correct {
		t.Fatal("wrong count graded correct")
	}

	if _, _, err := v.Grade(json.RawMessage(`{"shape":"cube"}`)); err == nil {
		t.Fatal("missing count must error")
	}

	// Level 1 has six authored exercises; the seventh call exhausts it.
	for i := 0; i < 5; i++ {
		if _, ok := v.Begin(1); !ok {
			t.Fatalf("exercise %d: unexpected exhaustion", i+2)
		}
	}
	if _, ok := v.Begin(1); ok {
		t.Fatal("level 1 should be exhausted after six exercises")
	}
}

func TestAttentionTrialAndSummary(t *testing.T) {
	v := newVariant(t, "attention", Options{})
	if v.Rules().TrialLimit != levels.AttentionTrialCount {
		t.Fatalf("trial limit = %d, want %d", v.Rules().TrialLimit, levels.AttentionTrialCount)
	}

	v.Begin(1)
	trial := v.Stimulus().(*trials.AttentionTrial)
	payload := fmt.Sprintf(`{"side":%q}`, trial.TargetSide)
	if correct, _, err := v.Grade(json.RawMessage(payload)); err != nil || !correct {
		t.Fatalf("target side graded %v, %v", correct, err)
	}
	if _, _, err := v.Grade(json.RawMessage(`{"side":"up"}`)); err == nil {
		t.Fatal("invalid side must error")
	}

	present := v.PresentView()
	if _, exposed := present["targetSide"]; exposed {
		t.Fatal("present view leaks the target side")
	}

	sm, ok := v.(Summarizer)
	if !ok {
		t.Fatal("attention must summarize")
	}
	history := []models.TrialEntry{
		{Correct: true, LatencySeconds: 0.4, Stimulus: &trials.AttentionTrial{Congruent: true}},
		{Correct: true, LatencySeconds: 0.6, Stimulus: &trials.AttentionTrial{Congruent: true}},
		{Correct: true, LatencySeconds: 0.9, Stimulus: &trials.AttentionTrial{Congruent: false}},
		{Correct: false, LatencySeconds: 3.0, Stimulus: &trials.AttentionTrial{Congruent: false}},
	}
	stats := sm.Summarize(history)
	if got := stats["congruentMeanSeconds"]; got != 0.5 {
		t.Fatalf("congruent mean = %v, want 0.5", got)
	}
	if got := stats["incongruentMeanSeconds"]; got != 0.9 {
		t.Fatalf("incongruent mean = %v, want 0.9", got)
	}
	if got := stats["cueingEffectSeconds"]; got < 0.399 || got > 0.401 {
		t.Fatalf("cueing effect = %v, want 0.4", got)
	}
}
