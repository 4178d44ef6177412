package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"cognitrain-go/internal/database"
	"cognitrain-go/internal/models"
)

// UpsertProgress folds a finished game's score into the user's per-domain
// aggregate: play count, best score, rolling average over the recent
// window.
func UpsertProgress(ctx context.Context, userID int, domain string, score int) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress models.GameProgress
		err := tx.Where("user_id = ? AND domain = ?", userID, domain).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.GameProgress{UserID: userID, Domain: domain}
		} else if err != nil {
			return err
		}

		progress.GamesPlayed++
		if score > progress.BestScore {
			progress.BestScore = score
		}
		progress.RecentScores = append(progress.RecentScores, int64(score))
		if len(progress.RecentScores) > models.RecentScoreWindow {
			progress.RecentScores = progress.RecentScores[len(progress.RecentScores)-models.RecentScoreWindow:]
		}
		var sum int64
		for _, s := range progress.RecentScores {
			sum += s
		}
		progress.AverageScore = float64(sum) / float64(len(progress.RecentScores))

		return tx.Save(&progress).Error
	})
}

// GetProgress returns a user's aggregates across all domains.
func GetProgress(ctx context.Context, userID int) ([]models.GameProgress, error) {
	var progress []models.GameProgress
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("domain ASC").
		Find(&progress).Error
	return progress, err
}
