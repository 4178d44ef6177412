package results

import (
	"math"

	"cognitrain-go/internal/models"
)

// MeanLatency is the average response time across correctly answered
// trials, in seconds. Timeouts are excluded; their latency is the window
// length, not a reaction time.
func MeanLatency(history []models.TrialEntry) float64 {
	var sum float64
	var count int
	for _, entry := range history {
		if entry.Correct && entry.Cause == models.CauseAnswered {
			sum += entry.LatencySeconds
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// LatencySD is the population standard deviation of correct-trial
// response times.
func LatencySD(history []models.TrialEntry) float64 {
	var latencies []float64
	for _, entry := range history {
		if entry.Correct && entry.Cause == models.CauseAnswered {
			latencies = append(latencies, entry.LatencySeconds)
		}
	}
	if len(latencies) <= 1 {
		return 0
	}

	avg := MeanLatency(history)
	var sumSquaredDiff float64
	for _, l := range latencies {
		diff := l - avg
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(latencies))
	return math.Sqrt(variance)
}

// TimeoutRate is the share of attempted trials lost to the trial timer.
func TimeoutRate(history []models.TrialEntry) float64 {
	if len(history) == 0 {
		return 0
	}
	timeouts := 0
	for _, entry := range history {
		if entry.Cause == models.CauseTimeout {
			timeouts++
		}
	}
	return float64(timeouts) / float64(len(history))
}

// latencySubmetrics folds the shared timing stats into the game-specific
// sub-metric map.
func latencySubmetrics(history []models.TrialEntry, submetrics map[string]float64) map[string]float64 {
	if len(history) == 0 {
		return submetrics
	}
	if submetrics == nil {
		submetrics = make(map[string]float64, 3)
	}
	submetrics["meanLatencySeconds"] = MeanLatency(history)
	submetrics["latencySdSeconds"] = LatencySD(history)
	submetrics["timeoutRate"] = TimeoutRate(history)
	return submetrics
}
