package repositories

import (
	"context"

	"marketvue_backend/internal/models"

	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Record(ctx context.Context, event *models.ModerationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) ListRecent(ctx context.Context, entity string, limit int) ([]models.ModerationEvent, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var events []models.ModerationEvent
	err := q.Find(&events).Error
	return events, err
}
