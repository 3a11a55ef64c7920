package services

import (
	"context"
	"strings"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

type ReviewService interface {
	// Upsert - один отзыв на пару (пост, автор); повторная отправка перезаписывает оценку и текст
	Upsert(ctx context.Context, actor *auth.Actor, postID string, req *dto.UpsertReviewRequest) (*dto.UpsertReviewResponse, error)
	ListByPost(ctx context.Context, postID string, viewer *auth.Actor) (*dto.ReviewListResponse, error)
}

type reviewService struct {
	store repositories.Store
	authz AuthorizationService
}

func NewReviewService(store repositories.Store, authz AuthorizationService) ReviewService {
	return &reviewService{
		store: store,
		authz: authz,
	}
}

// ---------------- Review Operations ----------------

func (s *reviewService) Upsert(ctx context.Context, actor *auth.Actor, postID string, req *dto.UpsertReviewRequest) (*dto.UpsertReviewResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermReviewsWrite) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ValidationError(map[string]string{"rating": "must be between 1 and 5"})
	}

	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !post.Listable() {
		return nil, apperrors.ErrPostUnavailable
	}
	if post.UserID == actor.ID {
		return nil, apperrors.ErrCannotReviewOwnPost
	}

	review := &models.Review{
		PostID:  postID,
		UserID:  actor.ID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	created, err := s.store.Reviews().Upsert(ctx, review)
	if err != nil {
		return nil, handleRepoError(err)
	}

	stats, err := s.store.Reviews().Stats(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "review saved", "post_id", postID, "user_id", actor.ID, "created", created)
	return &dto.UpsertReviewResponse{
		Review:  toReviewResponse(review),
		Created: created,
		Stats:   toRatingStats(stats),
	}, nil
}

// ListByPost - отзывы к неопубликованному посту видят только владелец и администраторы
func (s *reviewService) ListByPost(ctx context.Context, postID string, viewer *auth.Actor) (*dto.ReviewListResponse, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !post.Listable() && !s.authz.CanManagePost(viewer, post) {
		return nil, apperrors.ErrPostNotFound
	}

	reviews, err := s.store.Reviews().ListByPost(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	stats, err := s.store.Reviews().Stats(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	return &dto.ReviewListResponse{
		Reviews: out,
		Stats:   toRatingStats(stats),
	}, nil
}
