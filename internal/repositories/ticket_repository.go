package repositories

import (
	"context"
	"errors"

	"marketvue_backend/internal/models"

	"gorm.io/gorm"
)

type ticketRepository struct {
	db *gorm.DB
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, status models.TicketStatus, page Page) ([]models.SupportTicket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.SupportTicket
	err := paginate(q.Order("created_at DESC"), page).Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error {
	result := r.db.WithContext(ctx).Model(&models.SupportTicket{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SupportTicket{})
	return result.RowsAffected, result.Error
}
