package repository

import (
	"context"
	"time"

	"cognitrain-go/internal/database"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// GetScoreTimeline returns a user's scores for one game in chronological
// order, for progress charting.
func GetScoreTimeline(ctx context.Context, userID int, game string) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	query := `
		SELECT created_at AS date, score::float AS value
		FROM game_results
		WHERE user_id = ? AND game = ?
		ORDER BY created_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, userID, game).Scan(&data).Error
	return data, err
}

// GetDomainTimeline returns a user's scores across every game in one
// cognitive domain.
func GetDomainTimeline(ctx context.Context, userID int, domain string) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	query := `
		SELECT created_at AS date, score::float AS value
		FROM game_results
		WHERE user_id = ? AND domain = ?
		ORDER BY created_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, userID, domain).Scan(&data).Error
	return data, err
}
