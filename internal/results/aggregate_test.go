package results

import (
	"testing"
	"time"

	"cognitrain-go/internal/models"
)

func TestRoundPct(t *testing.T) {
	tests := []struct {
		num, den float64
		want     int
	}{
		{0, 0, 0}, // zero denominator must not NaN
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{1, 1, 100},
		{0.5, 100, 1}, // 0.5% rounds half up
	}
	for _, tc := range tests {
		if got := RoundPct(tc.num, tc.den); got != tc.want {
			t.Errorf("RoundPct(%v, %v) = %d, want %d", tc.num, tc.den, got, tc.want)
		}
	}
}

func TestAccuracyPctEmptySession(t *testing.T) {
	if got := AccuracyPct(0, 0); got != 0 {
		t.Fatalf("accuracy of an empty session = %d, want 0", got)
	}
}

func TestLevelPctClampsReached(t *testing.T) {
	if got := LevelPct(1, 10, 10); got != 100 {
		t.Fatalf("full climb = %d, want 100", got)
	}
	if got := LevelPct(1, 10, 1); got != 0 {
		t.Fatalf("no climb = %d, want 0", got)
	}
	if got := LevelPct(1, 10, 25); got != 100 {
		t.Fatalf("overshoot should clamp, got %d", got)
	}
	if got := LevelPct(1, 10, 0); got != 0 {
		t.Fatalf("below start should clamp, got %d", got)
	}
}

func TestCompositeScore(t *testing.T) {
	if got := CompositeScore(0, 100, 40); got != 40 {
		t.Fatalf("zero weight must return accuracy, got %d", got)
	}
	if got := CompositeScore(50, 100, 40); got != 70 {
		t.Fatalf("even blend = %d, want 70", got)
	}
	if got := CompositeScore(60, 50, 80); got != 62 {
		t.Fatalf("60/40 blend = %d, want 62", got)
	}
}

func TestBandBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.QualitativeLevel
	}{
		{100, models.LevelAdvanced},
		{80, models.LevelAdvanced},
		{79, models.LevelIntermediate},
		{50, models.LevelIntermediate},
		{49, models.LevelBasic},
		{0, models.LevelBasic},
	}
	for _, tc := range tests {
		if got := Band(tc.score); got != tc.want {
			t.Errorf("Band(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAggregateEmptyHistory(t *testing.T) {
	now := time.Now()
	r := Aggregate(Params{
		Game:       "shapes",
		Domain:     "reasoning",
		StartLevel: 1,
		MaxLevel:   10,
		Reason:     models.ReasonTimeExhausted,
		Start:      now,
		End:        now.Add(3 * time.Second),
	})
	if r.Score != 0 {
		t.Fatalf("score = %d, want 0", r.Score)
	}
	if r.Level != models.LevelBasic {
		t.Fatalf("band = %q, want basic", r.Level)
	}
	if r.ElapsedSeconds != 3 {
		t.Fatalf("elapsed = %d, want 3", r.ElapsedSeconds)
	}
	if len(r.RawData) == 0 {
		t.Fatal("raw data must always be valid JSON")
	}
}

func TestAggregateAllCorrect(t *testing.T) {
	now := time.Now()
	history := []models.TrialEntry{
		{Number: 1, Level: 1, Correct: true, Cause: models.CauseAnswered, LatencySeconds: 1.0},
		{Number: 2, Level: 2, Correct: true, Cause: models.CauseAnswered, LatencySeconds: 2.0},
	}
	r := Aggregate(Params{
		Game:            "verbal",
		Domain:          "memory",
		StartLevel:      1,
		MaxLevel:        7,
		MaxLevelReached: 7,
		Correct:         2,
		Attempted:       2,
		Start:           now,
		End:             now.Add(10 * time.Second),
		Reason:          models.ReasonCompleted,
		History:         history,
	})
	if r.Score != 100 {
		t.Fatalf("score = %d, want 100", r.Score)
	}
	if r.Level != models.LevelAdvanced {
		t.Fatalf("band = %q, want advanced", r.Level)
	}
	if r.Correct != 2 || r.Total != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", r.Correct, r.Total)
	}
}

func TestAggregateLevelWeightedScore(t *testing.T) {
	now := time.Now()
	// Half accuracy, half the level range climbed, 50/50 weight.
	r := Aggregate(Params{
		Game:            "shapes",
		Domain:          "reasoning",
		StartLevel:      1,
		MaxLevel:        9,
		MaxLevelReached: 5,
		LevelWeightPct:  50,
		Correct:         1,
		Attempted:       2,
		Start:           now,
		End:             now.Add(time.Second),
		Reason:          models.ReasonConsecutiveErrors,
	})
	if r.Score != 50 {
		t.Fatalf("score = %d, want 50", r.Score)
	}
	if r.Level != models.LevelIntermediate {
		t.Fatalf("band = %q, want intermediate", r.Level)
	}
}

func TestLatencyStats(t *testing.T) {
	history := []models.TrialEntry{
		{Correct: true, Cause: models.CauseAnswered, LatencySeconds: 1.0},
		{Correct: true, Cause: models.CauseAnswered, LatencySeconds: 3.0},
		{Correct: false, Cause: models.CauseAnswered, LatencySeconds: 10.0}, // wrong answers excluded
		{Correct: false, Cause: models.CauseTimeout, LatencySeconds: 8.0},   // timeouts excluded
	}
	if got := MeanLatency(history); got != 2.0 {
		t.Fatalf("mean latency = %v, want 2.0", got)
	}
	if got := LatencySD(history); got != 1.0 {
		t.Fatalf("latency sd = %v, want 1.0", got)
	}
	if got := TimeoutRate(history); got != 0.25 {
		t.Fatalf("timeout rate = %v, want 0.25", got)
	}
}

func TestLatencyStatsEmpty(t *testing.T) {
	if MeanLatency(nil) != 0 || LatencySD(nil) != 0 || TimeoutRate(nil) != 0 {
		t.Fatal("empty history must yield zeros, not NaN")
	}
}
