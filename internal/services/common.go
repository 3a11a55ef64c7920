package services

import (
	"errors"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

// handleRepoError переводит ошибки хранилища в AppError.
// AppError пропускается как есть, неизвестные ошибки становятся 500.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.ErrPostNotFound
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound
	case errors.Is(err, repositories.ErrCategoryAlreadyExists):
		return apperrors.ErrCategoryExists
	case errors.Is(err, repositories.ErrRefreshTokenNotFound):
		return apperrors.ErrInvalidToken
	case errors.Is(err, repositories.ErrTicketNotFound):
		return apperrors.ErrTicketNotFound
	default:
		return apperrors.DatabaseError(err)
	}
}

// passwordError - ошибка проверки пароля как 400, никогда не 500.
func passwordError(password string) error {
	switch err := auth.ValidatePassword(password); {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrPasswordTooLong):
		return apperrors.ErrPasswordTooLong
	default:
		return apperrors.ErrWeakPassword
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// ============================================
// Проекции
// ============================================

func toUserResponse(u *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		RoleTier:    u.Role.Tier(),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func toUserResponses(users []models.User) []*dto.UserResponse {
	out := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toPostResponse(v *models.PostView) *dto.PostResponse {
	resp := &dto.PostResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Price:        v.Price,
		Currency:     v.Currency,
		ReviewStatus: string(v.ReviewStatus),
		IsActive:     v.IsActive,
		Listable:     v.Listable(),
		Seller: dto.SellerInfo{
			ID:    v.UserID,
			Name:  v.SellerName,
			Email: v.SellerEmail,
		},
		CoverURL:      v.CoverURL,
		AverageRating: v.AverageRating,
		ReviewCount:   v.ReviewCount,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	if v.CategoryID != nil {
		resp.Category = &dto.CategoryInfo{ID: *v.CategoryID, Name: v.CategoryName}
	}
	for _, img := range v.Images {
		resp.Images = append(resp.Images, dto.ImageResponse{
			ID:           img.ID,
			URL:          img.URL,
			ThumbnailURL: img.ThumbnailURL,
			Position:     img.Position,
			IsCover:      img.IsCover,
		})
	}
	return resp
}

func toPostResponses(views []models.PostView) []*dto.PostResponse {
	out := make([]*dto.PostResponse, 0, len(views))
	for i := range views {
		out = append(out, toPostResponse(&views[i]))
	}
	return out
}

func toRatingStats(s *models.ReviewStats) dto.RatingStats {
	return dto.RatingStats{
		AverageRating: s.AverageRating,
		ReviewCount:   s.ReviewCount,
		Breakdown:     s.Breakdown,
	}
}

func toReviewResponse(r *models.Review) *dto.ReviewResponse {
	resp := &dto.ReviewResponse{
		ID:        r.ID,
		PostID:    r.PostID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	return resp
}

func toEventResponse(e *models.ModerationEvent) *dto.EventResponse {
	return &dto.EventResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Changes:    []byte(e.Changes),
		CreatedAt:  e.CreatedAt,
	}
}

func toCategoryResponse(c *models.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func toTicketResponse(t *models.SupportTicket) *dto.TicketResponse {
	return &dto.TicketResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Body:      t.Body,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
