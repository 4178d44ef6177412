package repository

import (
	"context"

	"gorm.io/gorm"

	"cognitrain-go/internal/database"
	"cognitrain-go/internal/models"
)

// SaveResultTx saves the summary and all granular trial rows for a
// finished game in a single transaction.
func SaveResultTx(ctx context.Context, result *models.GameResult, rows []models.TrialRow) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ResultID = result.ID
		}
		return tx.Create(&rows).Error
	})
}

// ListResults returns a user's result summaries, newest first. A non-empty
// game name narrows the listing to that game.
func ListResults(ctx context.Context, userID int, game string) ([]models.GameResult, error) {
	var results []models.GameResult
	q := database.DB.WithContext(ctx).Where("user_id = ?", userID)
	if game != "" {
		q = q.Where("game = ?", game)
	}
	err := q.Order("created_at DESC").Find(&results).Error
	return results, err
}

// GetResult fetches a single result owned by the user, including its
// trial rows.
func GetResult(ctx context.Context, userID, resultID int) (*models.GameResult, []models.TrialRow, error) {
	var result models.GameResult
	err := database.DB.WithContext(ctx).
		First(&result, "id = ? AND user_id = ?", resultID, userID).Error
	if err != nil {
		return nil, nil, err
	}
	var rows []models.TrialRow
	err = database.DB.WithContext(ctx).
		Where("result_id = ?", result.ID).
		Order("number ASC").
		Find(&rows).Error
	return &result, rows, err
}
