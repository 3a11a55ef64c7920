package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/imageprocessor"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/internal/storage"
	"marketvue_backend/internal/validator"
	"marketvue_backend/pkg/apperrors"
)

const defaultCurrency = "CLP"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadPolicy - ограничения на картинки объявлений
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

func (p UploadPolicy) allows(contentType string) bool {
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

type PostService interface {
	Create(ctx context.Context, actor *auth.Actor, req *dto.CreatePostRequest, images []dto.UploadedImage) (*dto.PostResponse, error)
	ListPublic(ctx context.Context, query *dto.PostListQuery) (*dto.PostListResponse, error)
	// GetPublic - неопубликованный пост видят только владелец и администраторы, остальным 404
	GetPublic(ctx context.Context, postID string, viewer *auth.Actor) (*dto.PostResponse, error)
	ListMine(ctx context.Context, actor *auth.Actor, query *dto.PostListQuery) (*dto.PostListResponse, error)
	ListAll(ctx context.Context, query *dto.PostListQuery) (*dto.PostListResponse, error)
	// Update - правка владельцем или администратором. Правка владельцем
	// опубликованного или отклоненного поста возвращает его на модерацию.
	Update(ctx context.Context, actor *auth.Actor, postID string, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	Delete(ctx context.Context, actor *auth.Actor, postID string) error
}

type postService struct {
	store     repositories.Store
	authz     AuthorizationService
	files     storage.Storage
	processor *imageprocessor.Processor
	policy    UploadPolicy
}

func NewPostService(
	store repositories.Store,
	authz AuthorizationService,
	files storage.Storage,
	processor *imageprocessor.Processor,
	policy UploadPolicy,
) PostService {
	return &postService{
		store:     store,
		authz:     authz,
		files:     files,
		processor: processor,
		policy:    policy,
	}
}

// ---------------- Create ----------------

func (s *postService) Create(ctx context.Context, actor *auth.Actor, req *dto.CreatePostRequest, images []dto.UploadedImage) (*dto.PostResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermPostsWriteSelf) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !validator.ValidPrice(req.Price) {
		return nil, invalidPrice()
	}

	contentTypes := make([]string, len(images))
	for i, img := range images {
		ct, err := s.checkImage(img)
		if err != nil {
			return nil, err
		}
		contentTypes[i] = ct
	}

	var categoryID *string
	if id := strings.TrimSpace(req.CategoryID); id != "" {
		if _, err := s.store.Categories().FindByID(ctx, id); err != nil {
			return nil, handleRepoError(err)
		}
		categoryID = &id
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	post := &models.Post{
		UserID:       actor.ID,
		CategoryID:   categoryID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		Currency:     currency,
		ReviewStatus: models.PostStatusPendingReview,
		IsActive:     true,
	}

	var saved []string
	for i, img := range images {
		stored, keys, err := s.storeImage(ctx, actor.ID, img.Data, contentTypes[i])
		saved = append(saved, keys...)
		if err != nil {
			s.cleanup(ctx, saved)
			return nil, err
		}
		stored.Position = i
		stored.IsCover = i == 0
		post.Images = append(post.Images, *stored)
	}

	if err := s.store.Posts().Create(ctx, post); err != nil {
		s.cleanup(ctx, saved)
		return nil, handleRepoError(err)
	}

	view, err := s.store.Posts().FindView(ctx, post.ID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "post created", "post_id", post.ID, "user_id", actor.ID, "images", len(post.Images))
	return toPostResponse(view), nil
}

// checkImage проверяет размер и тип по содержимому, а не по заголовку клиента
func (s *postService) checkImage(img dto.UploadedImage) (string, error) {
	if s.policy.MaxSize > 0 && int64(len(img.Data)) > s.policy.MaxSize {
		return "", apperrors.ErrFileTooLarge.WithDetails(map[string]interface{}{
			"file":     img.Filename,
			"max_size": s.policy.MaxSize,
		})
	}

	contentType := http.DetectContentType(img.Data)
	if !s.policy.allows(contentType) {
		return "", apperrors.ErrInvalidFileType.WithDetails(map[string]string{
			"file":         img.Filename,
			"content_type": contentType,
		})
	}
	if _, err := imageprocessor.DetectFormat(bytes.NewReader(img.Data)); err != nil {
		return "", apperrors.ErrInvalidFileType.WithError(err)
	}
	return contentType, nil
}

// storeImage сохраняет оригинал и миниатюру, возвращает ключи всего сохраненного.
// Миниатюра необязательна: ошибка ее построения только логируется.
func (s *postService) storeImage(ctx context.Context, ownerID string, data []byte, contentType string) (*models.PostImage, []string, error) {
	if s.files == nil {
		return nil, nil, apperrors.New(apperrors.CodeStorageError, "storage", "File storage is not configured", http.StatusInternalServerError)
	}

	name := uuid.NewString()
	key := fmt.Sprintf("posts/%s/%s%s", ownerID, name, imageExtensions[contentType])
	if err := s.files.Save(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeStorageError, "storage", "Failed to store image", http.StatusInternalServerError)
	}
	keys := []string{key}

	image := &models.PostImage{
		Path: key,
		URL:  s.files.URL(key),
	}

	if s.processor != nil {
		thumb, thumbType, err := s.processor.Thumbnail(data)
		if err != nil {
			logger.CtxWithError(ctx, "thumbnail generation failed", err, "key", key)
			return image, keys, nil
		}
		thumbKey := fmt.Sprintf("posts/%s/thumbs/%s%s", ownerID, name, imageExtensions[thumbType])
		if err := s.files.Save(ctx, thumbKey, bytes.NewReader(thumb), thumbType); err != nil {
			return nil, keys, apperrors.Wrap(err, apperrors.CodeStorageError, "storage", "Failed to store thumbnail", http.StatusInternalServerError)
		}
		keys = append(keys, thumbKey)
		image.ThumbnailKey = thumbKey
		image.ThumbnailURL = s.files.URL(thumbKey)
	}

	return image, keys, nil
}

func (s *postService) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil {
			logger.CtxWithError(ctx, "failed to remove uploaded file", err, "key", key)
		}
	}
}

// ---------------- Listing ----------------

func (s *postService) ListPublic(ctx context.Context, query *dto.PostListQuery) (*dto.PostListResponse, error) {
	filter, err := postFilterFrom(query)
	if err != nil {
		return nil, err
	}
	filter.Status = ""

	views, total, err := s.store.Posts().ListPublic(ctx, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return postList(views, total, filter.Page), nil
}

func (s *postService) GetPublic(ctx context.Context, postID string, viewer *auth.Actor) (*dto.PostResponse, error) {
	view, err := s.store.Posts().FindView(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !view.Listable() && !s.authz.CanManagePost(viewer, &view.Post) {
		return nil, apperrors.ErrPostNotFound
	}
	return toPostResponse(view), nil
}

func (s *postService) ListMine(ctx context.Context, actor *auth.Actor, query *dto.PostListQuery) (*dto.PostListResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	filter, err := postFilterFrom(query)
	if err != nil {
		return nil, err
	}

	views, total, err := s.store.Posts().ListByOwner(ctx, actor.ID, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return postList(views, total, filter.Page), nil
}

func (s *postService) ListAll(ctx context.Context, query *dto.PostListQuery) (*dto.PostListResponse, error) {
	filter, err := postFilterFrom(query)
	if err != nil {
		return nil, err
	}

	views, total, err := s.store.Posts().ListAll(ctx, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return postList(views, total, filter.Page), nil
}

func postFilterFrom(query *dto.PostListQuery) (repositories.PostFilter, error) {
	filter := repositories.PostFilter{
		Query:      strings.TrimSpace(query.Query),
		CategoryID: strings.TrimSpace(query.CategoryID),
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Page:       repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		return filter, apperrors.ValidationError(map[string]string{"min_price": "must not exceed max_price"})
	}
	if query.Status != "" {
		status, ok := models.ParsePostStatus(query.Status)
		if !ok {
			return filter, apperrors.ErrInvalidStatus("posts", "Unknown post status")
		}
		filter.Status = status
	}
	return filter, nil
}

func postList(views []models.PostView, total int64, page repositories.Page) *dto.PostListResponse {
	return &dto.PostListResponse{
		Posts:      toPostResponses(views),
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages(total, page.PageSize),
	}
}

func invalidPrice() error {
	return apperrors.ValidationError(map[string]string{"price": "must be a finite number between 0 and 1e12"})
}

// ---------------- Update ----------------

func (s *postService) Update(ctx context.Context, actor *auth.Actor, postID string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if req.IsEmpty() {
		return nil, apperrors.ErrEmptyUpdate
	}
	if req.Price != nil && !validator.ValidPrice(*req.Price) {
		return nil, invalidPrice()
	}

	var from, to models.PostStatus
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return handleRepoError(err)
		}
		if !s.authz.CanManagePost(actor, post) {
			return apperrors.ErrInsufficientPermissions
		}

		if req.Title != nil {
			post.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			post.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			post.Price = *req.Price
		}
		if req.Currency != nil {
			post.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
			if post.Currency == "" {
				post.Currency = defaultCurrency
			}
		}
		if req.CategoryID != nil {
			if id := strings.TrimSpace(*req.CategoryID); id == "" {
				post.CategoryID = nil
			} else {
				if _, err := tx.Categories().FindByID(ctx, id); err != nil {
					return handleRepoError(err)
				}
				post.CategoryID = &id
			}
		}

		from = post.ReviewStatus
		to = from
		if !actor.Can(auth.PermPostsModerate) &&
			(from == models.PostStatusPublished || from == models.PostStatusRejected) {
			to = models.PostStatusPendingReview
		}
		post.ReviewStatus = to

		if err := tx.Posts().Update(ctx, post); err != nil {
			return handleRepoError(err)
		}
		if from != to {
			return recordEvent(ctx, tx, actor, models.EntityPost, post.ID, string(from), string(to),
				map[string]interface{}{"reason": "edited"})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.store.Posts().FindView(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "post updated", "post_id", postID, "actor_id", actor.ID, "from", from, "to", to)
	return toPostResponse(view), nil
}

// ---------------- Delete ----------------

func (s *postService) Delete(ctx context.Context, actor *auth.Actor, postID string) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}

	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return handleRepoError(err)
	}
	if !s.authz.CanManagePost(actor, post) {
		return apperrors.ErrInsufficientPermissions
	}

	// отзывы, картинки и пост удаляются вместе; файлы чистятся только после коммита
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Posts().Delete(ctx, postID)
	})
	if err != nil {
		return handleRepoError(err)
	}

	var keys []string
	for _, img := range post.Images {
		keys = append(keys, img.Path)
		if img.ThumbnailKey != "" {
			keys = append(keys, img.ThumbnailKey)
		}
	}
	if s.files != nil {
		s.cleanup(ctx, keys)
	}

	logger.CtxInfo(ctx, "post deleted", "post_id", postID, "actor_id", actor.ID)
	return nil
}
