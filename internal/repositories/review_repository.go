package repositories

import (
	"context"
	"errors"

	"marketvue_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reviewRepository struct {
	db *gorm.DB
}

// Upsert опирается на уникальный индекс (post_id, user_id): параллельная вставка
// той же пары превращается в UPDATE, а не во вторую строку.
func (r *reviewRepository) Upsert(ctx context.Context, review *models.Review) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing models.Review
	err := db.Where("post_id = ? AND user_id = ?", review.PostID, review.UserID).First(&existing).Error
	switch {
	case err == nil:
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		if err := db.Model(&existing).Select("rating", "comment").Updates(&existing).Error; err != nil {
			return false, err
		}
		*review = existing
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return false, err
	}

	if err := db.Where("post_id = ? AND user_id = ?", review.PostID, review.UserID).First(review).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *reviewRepository) ListByPost(ctx context.Context, postID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("updated_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Stats(ctx context.Context, postID string) (*models.ReviewStats, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return ReviewStatsFromCounts(counts), nil
}

// ReviewStatsFromCounts считает агрегаты по числу отзывов на каждую оценку.
func ReviewStatsFromCounts(counts map[int]int64) *models.ReviewStats {
	stats := &models.ReviewStats{Breakdown: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for rating, count := range counts {
		stats.Breakdown[rating] = count
		stats.ReviewCount += count
		sum += int64(rating) * count
	}
	if stats.ReviewCount > 0 {
		stats.AverageRating = float64(sum) / float64(stats.ReviewCount)
	}
	return stats
}

func (r *reviewRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Review{})
	return result.RowsAffected, result.Error
}
