package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 200
)

// ModerationService - переходы статусов пользователей и постов.
// Любое состояние может быть выставлено администратором; повторная установка
// того же статуса ничего не меняет и не пишет аудит.
type ModerationService interface {
	Approve(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error)
	Deny(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error)
	Block(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error)
	SetUserStatus(ctx context.Context, actor *auth.Actor, userID string, status models.UserStatus) (*dto.UserResponse, error)

	SetPostStatus(ctx context.Context, actor *auth.Actor, postID string, status models.PostStatus) (*dto.PostResponse, error)
	// ToggleActive - active == nil переключает флаг
	ToggleActive(ctx context.Context, actor *auth.Actor, postID string, active *bool) (*dto.PostResponse, error)

	ListEvents(ctx context.Context, entity string, limit int) ([]*dto.EventResponse, error)
}

type moderationService struct {
	store    repositories.Store
	authz    AuthorizationService
	metrics  *metrics.Metrics
	notifier *Notifier
}

func NewModerationService(
	store repositories.Store,
	authz AuthorizationService,
	m *metrics.Metrics,
	notifier *Notifier,
) ModerationService {
	return &moderationService{
		store:    store,
		authz:    authz,
		metrics:  m,
		notifier: notifier,
	}
}

// ---------------- Users ----------------

func (s *moderationService) Approve(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error) {
	return s.decide(ctx, actor, userID, models.UserStatusApproved)
}

func (s *moderationService) Deny(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error) {
	return s.decide(ctx, actor, userID, models.UserStatusDenied)
}

func (s *moderationService) Block(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error) {
	return s.decide(ctx, actor, userID, models.UserStatusBlocked)
}

func (s *moderationService) decide(ctx context.Context, actor *auth.Actor, userID string, status models.UserStatus) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermUsersApproveDeny) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return s.SetUserStatus(ctx, actor, userID, status)
}

func (s *moderationService) SetUserStatus(ctx context.Context, actor *auth.Actor, userID string, status models.UserStatus) (*dto.UserResponse, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus("users", "Unknown user status")
	}

	var user *models.User
	changed := false
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		target, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}
		if err := s.authz.AuthorizeUserModeration(actor, target); err != nil {
			return err
		}
		user = target
		changed, err = applyUserStatus(ctx, tx, actor, target, status, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.userTransitioned(ctx, user)
	}
	return toUserResponse(user), nil
}

// userTransitioned - метрики и письмо уже после коммита
func (s *moderationService) userTransitioned(ctx context.Context, user *models.User) {
	s.metrics.Transition(models.EntityUser, string(user.Status))
	s.notifier.UserStatusChanged(ctx, user)
	logger.CtxInfo(ctx, "user status changed", "user_id", user.ID, "status", user.Status)
}

// applyUserStatus меняет статус внутри транзакции: при выходе из APPROVED
// отзывает refresh-токены, пишет событие аудита. target обновляется на месте.
func applyUserStatus(
	ctx context.Context,
	tx repositories.Store,
	actor *auth.Actor,
	target *models.User,
	status models.UserStatus,
	changes map[string]interface{},
) (bool, error) {
	from := target.Status
	if from == status {
		return false, nil
	}
	if err := tx.Users().UpdateStatus(ctx, target.ID, status); err != nil {
		return false, handleRepoError(err)
	}
	if from == models.UserStatusApproved {
		if _, err := tx.RefreshTokens().DeleteByUserID(ctx, target.ID); err != nil {
			return false, handleRepoError(err)
		}
	}
	if err := recordEvent(ctx, tx, actor, models.EntityUser, target.ID, string(from), string(status), changes); err != nil {
		return false, err
	}
	target.Status = status
	return true, nil
}

func recordEvent(
	ctx context.Context,
	tx repositories.Store,
	actor *auth.Actor,
	entity, entityID, from, to string,
	changes map[string]interface{},
) error {
	event := &models.ModerationEvent{
		ActorID:    actor.ID,
		Entity:     entity,
		EntityID:   entityID,
		FromStatus: from,
		ToStatus:   to,
	}
	if len(changes) > 0 {
		raw, err := json.Marshal(changes)
		if err != nil {
			return apperrors.InternalError(err)
		}
		event.Changes = datatypes.JSON(raw)
	}
	if err := tx.Events().Record(ctx, event); err != nil {
		return handleRepoError(err)
	}
	return nil
}

// ---------------- Posts ----------------

func (s *moderationService) SetPostStatus(ctx context.Context, actor *auth.Actor, postID string, status models.PostStatus) (*dto.PostResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermPostsModerate) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus("posts", "Unknown post status")
	}

	changed := false
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return handleRepoError(err)
		}
		if post.ReviewStatus == status {
			return nil
		}
		if err := tx.Posts().UpdateStatus(ctx, postID, status); err != nil {
			return handleRepoError(err)
		}
		changed = true
		return recordEvent(ctx, tx, actor, models.EntityPost, postID, string(post.ReviewStatus), string(status), nil)
	})
	if err != nil {
		return nil, err
	}

	view, err := s.store.Posts().FindView(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if changed {
		s.metrics.Transition(models.EntityPost, string(status))
		s.notifier.PostStatusChanged(ctx, view)
		logger.CtxInfo(ctx, "post status changed", "post_id", postID, "status", status)
	}
	return toPostResponse(view), nil
}

// ToggleActive - флаг владельца не зависит от статуса модерации, но владелец
// не может включить пост, пока он REJECTED или HIDDEN. Администратор может всегда.
func (s *moderationService) ToggleActive(ctx context.Context, actor *auth.Actor, postID string, active *bool) (*dto.PostResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}

	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !s.authz.CanManagePost(actor, post) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	next := !post.IsActive
	if active != nil {
		next = *active
	}

	if next != post.IsActive {
		if next && post.ReviewStatus.LocksOwnerToggle() && !actor.Can(auth.PermPostsModerate) {
			return nil, apperrors.ErrPostUnavailable.WithMessage("Post cannot be activated while it is " + string(post.ReviewStatus))
		}
		if err := s.store.Posts().SetActive(ctx, postID, next); err != nil {
			return nil, handleRepoError(err)
		}
		state := "inactive"
		if next {
			state = "active"
		}
		s.metrics.Transition(models.EntityPost, state)
		logger.CtxInfo(ctx, "post active flag changed", "post_id", postID, "is_active", next)
	}

	view, err := s.store.Posts().FindView(ctx, postID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return toPostResponse(view), nil
}

// ---------------- Audit ----------------

func (s *moderationService) ListEvents(ctx context.Context, entity string, limit int) ([]*dto.EventResponse, error) {
	switch entity {
	case "", models.EntityUser, models.EntityPost:
	default:
		return nil, apperrors.ValidationError(map[string]string{"entity": "must be user or post"})
	}
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	events, err := s.store.Events().ListRecent(ctx, entity, limit)
	if err != nil {
		return nil, handleRepoError(err)
	}

	out := make([]*dto.EventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	return out, nil
}

