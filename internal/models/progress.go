package models

import (
	"time"

	"github.com/lib/pq"
)

// GameProgress is the cross-game aggregate kept per user and cognitive
// domain. Updated once per finished session, independently of the result
// record itself.
type GameProgress struct {
	ID           int `gorm:"primaryKey"`
	UserID       int `gorm:"index:idx_progress_user_domain,unique"`
	Domain       string `gorm:"index:idx_progress_user_domain,unique"`
	GamesPlayed  int
	AverageScore float64
	BestScore    int
	RecentScores pq.Int64Array `gorm:"type:integer[]"`
	UpdatedAt    time.Time
}

// RecentScoreWindow bounds how many scores the rolling window keeps.
const RecentScoreWindow = 20
