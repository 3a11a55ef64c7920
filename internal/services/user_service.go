package services

import (
	"context"
	"strings"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/internal/storage"
	"marketvue_backend/pkg/apperrors"
)

const (
	overviewPendingUsers = 5
	overviewPendingPosts = 5
)

type UserService interface {
	ListPending(ctx context.Context) ([]*dto.UserResponse, error)
	List(ctx context.Context, query *dto.UserListQuery) (*dto.UserListResponse, error)
	AdminUpdate(ctx context.Context, actor *auth.Actor, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	// Delete - каскадное удаление пользователя со всеми данными одной транзакцией
	Delete(ctx context.Context, actor *auth.Actor, userID string) error
	UpdateOwnProfile(ctx context.Context, actor *auth.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
}

type userService struct {
	store    repositories.Store
	authz    AuthorizationService
	files    storage.Storage
	metrics  *metrics.Metrics
	notifier *Notifier
}

func NewUserService(
	store repositories.Store,
	authz AuthorizationService,
	files storage.Storage,
	m *metrics.Metrics,
	notifier *Notifier,
) UserService {
	return &userService{
		store:    store,
		authz:    authz,
		files:    files,
		metrics:  m,
		notifier: notifier,
	}
}

// ---------------- Listing ----------------

// ListPending - ожидающие подтверждения, самые старые первыми
func (s *userService) ListPending(ctx context.Context) ([]*dto.UserResponse, error) {
	users, err := s.store.Users().ListByStatus(ctx, models.UserStatusPending, 0)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return toUserResponses(users), nil
}

func (s *userService) List(ctx context.Context, query *dto.UserListQuery) (*dto.UserListResponse, error) {
	filter := repositories.UserFilter{
		Search: strings.TrimSpace(query.Search),
		Page:   repositories.Page{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}
	if query.Status != "" {
		status, ok := models.ParseUserStatus(query.Status)
		if !ok {
			return nil, apperrors.ErrInvalidStatus("users", "Unknown user status")
		}
		filter.Status = status
	}
	if query.Role != "" {
		role, ok := models.ParseUserRole(query.Role)
		if !ok {
			return nil, apperrors.ValidationError(map[string]string{"role": "unknown role"})
		}
		filter.Role = role
	}

	users, total, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, handleRepoError(err)
	}

	return &dto.UserListResponse{
		Users:      toUserResponses(users),
		Total:      total,
		Page:       filter.Page.Page,
		PageSize:   filter.Page.PageSize,
		TotalPages: totalPages(total, filter.Page.PageSize),
	}, nil
}

// ---------------- Admin update ----------------

// AdminUpdate применяет правку администратора. Порядок проверок:
// 404 нет пользователя, 400 пустой запрос, 403 по измененным полям.
func (s *userService) AdminUpdate(ctx context.Context, actor *auth.Actor, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}

	var (
		user          *models.User
		statusChanged bool
	)
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		target, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}
		if req.IsEmpty() {
			return apperrors.ErrEmptyUpdate
		}

		role, status, err := parseRoleAndStatus(req, target)
		if err != nil {
			return err
		}

		changes := UserChanges{
			Name:     req.Name != nil && strings.TrimSpace(*req.Name) != target.Name,
			Email:    req.Email != nil && normalizeEmail(*req.Email) != target.Email,
			Password: req.Password != nil && !auth.CheckPasswordHash(*req.Password, target.PasswordHash),
			Role:     role != target.Role,
			Status:   status != target.Status,
		}
		if err := s.authz.AuthorizeUserUpdate(actor, target, changes); err != nil {
			return err
		}
		user = target
		if !changes.Any() {
			return nil
		}

		audit := map[string]interface{}{}
		if changes.Name {
			target.Name = strings.TrimSpace(*req.Name)
			audit["name"] = true
		}
		if changes.Email {
			target.Email = normalizeEmail(*req.Email)
			audit["email"] = true
		}
		if changes.Password {
			if err := passwordError(*req.Password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				return apperrors.InternalError(err)
			}
			target.PasswordHash = hash
			audit["password"] = true
		}
		if changes.Role {
			audit["role"] = map[string]string{"from": string(target.Role), "to": string(role)}
			target.Role = role
		}

		if changes.Name || changes.Email || changes.Password || changes.Role {
			if err := tx.Users().Update(ctx, target); err != nil {
				return handleRepoError(err)
			}
		}

		// смена роли или пароля отзывает refresh-токены
		if changes.Role || changes.Password {
			if _, err := tx.RefreshTokens().DeleteByUserID(ctx, target.ID); err != nil {
				return handleRepoError(err)
			}
		}

		if changes.Status {
			statusChanged, err = applyUserStatus(ctx, tx, actor, target, status, audit)
			return err
		}
		return recordEvent(ctx, tx, actor, models.EntityUser, target.ID, string(target.Status), string(target.Status), audit)
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.metrics.Transition(models.EntityUser, string(user.Status))
		s.notifier.UserStatusChanged(ctx, user)
	}
	logger.CtxInfo(ctx, "user updated by admin", "user_id", user.ID, "actor_id", actor.ID)
	return toUserResponse(user), nil
}

func parseRoleAndStatus(req *dto.AdminUpdateUserRequest, target *models.User) (models.UserRole, models.UserStatus, error) {
	role, status := target.Role, target.Status
	if req.Role != nil {
		parsed, ok := models.ParseUserRole(*req.Role)
		if !ok {
			return "", "", apperrors.ValidationError(map[string]string{"role": "unknown role"})
		}
		role = parsed
	}
	if req.Status != nil {
		parsed, ok := models.ParseUserStatus(*req.Status)
		if !ok {
			return "", "", apperrors.ErrInvalidStatus("users", "Unknown user status")
		}
		status = parsed
	}
	return role, status, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ---------------- Delete ----------------

func (s *userService) Delete(ctx context.Context, actor *auth.Actor, userID string) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermUsersDelete) {
		return apperrors.ErrInsufficientPermissions
	}
	if actor.ID == userID {
		return apperrors.ErrCannotModifySelf
	}

	var images []models.PostImage
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		target, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}

		images, err = tx.Posts().ImagesByOwner(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}

		reviews, err := tx.Reviews().DeleteByUser(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}
		posts, err := tx.Posts().DeleteByOwner(ctx, userID)
		if err != nil {
			return handleRepoError(err)
		}
		if _, err := tx.RefreshTokens().DeleteByUserID(ctx, userID); err != nil {
			return handleRepoError(err)
		}
		if _, err := tx.Tickets().DeleteByUser(ctx, userID); err != nil {
			return handleRepoError(err)
		}
		if err := tx.Users().Delete(ctx, userID); err != nil {
			return handleRepoError(err)
		}

		return recordEvent(ctx, tx, actor, models.EntityUser, userID, string(target.Status), "DELETED", map[string]interface{}{
			"email":   target.Email,
			"posts":   posts,
			"reviews": reviews,
		})
	})
	if err != nil {
		return err
	}

	// файлы удаляются только после коммита
	s.removeFiles(ctx, images)
	logger.CtxInfo(ctx, "user deleted", "user_id", userID, "actor_id", actor.ID, "images", len(images))
	return nil
}

func (s *userService) removeFiles(ctx context.Context, images []models.PostImage) {
	if s.files == nil {
		return
	}
	for _, img := range images {
		for _, key := range []string{img.Path, img.ThumbnailKey} {
			if key == "" {
				continue
			}
			if err := s.files.Delete(ctx, key); err != nil {
				logger.CtxWithError(ctx, "failed to delete stored file", err, "key", key)
			}
		}
	}
}

// ---------------- Own profile ----------------

// UpdateOwnProfile - только имя, email и пароль; смена пароля требует текущий пароль
func (s *userService) UpdateOwnProfile(ctx context.Context, actor *auth.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if req.IsEmpty() {
		return nil, apperrors.ErrEmptyUpdate
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := tx.Users().FindByID(ctx, actor.ID)
		if err != nil {
			return handleRepoError(err)
		}
		user = current

		if req.Name != nil {
			current.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			current.Email = normalizeEmail(*req.Email)
		}
		passwordChanged := false
		if req.Password != nil {
			if !auth.CheckPasswordHash(req.CurrentPassword, current.PasswordHash) {
				return apperrors.ValidationError(map[string]string{"current_password": "is incorrect"})
			}
			if err := passwordError(*req.Password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				return apperrors.InternalError(err)
			}
			current.PasswordHash = hash
			passwordChanged = true
		}

		if err := tx.Users().Update(ctx, current); err != nil {
			return handleRepoError(err)
		}
		if passwordChanged {
			if _, err := tx.RefreshTokens().DeleteByUserID(ctx, current.ID); err != nil {
				return handleRepoError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "profile updated", "user_id", user.ID)
	return toUserResponse(user), nil
}

// ---------------- Overview ----------------

func (s *userService) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	userCounts, err := s.store.Users().CountByStatus(ctx)
	if err != nil {
		return nil, handleRepoError(err)
	}
	postCounts, err := s.store.Posts().CountByStatus(ctx)
	if err != nil {
		return nil, handleRepoError(err)
	}
	pendingUsers, err := s.store.Users().ListByStatus(ctx, models.UserStatusPending, overviewPendingUsers)
	if err != nil {
		return nil, handleRepoError(err)
	}
	pendingPosts, _, err := s.store.Posts().ListAll(ctx, repositories.PostFilter{
		Status: models.PostStatusPendingReview,
		Page:   repositories.Page{Page: 1, PageSize: overviewPendingPosts},
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	users := map[string]int64{}
	for _, st := range []models.UserStatus{
		models.UserStatusPending,
		models.UserStatusApproved,
		models.UserStatusDenied,
		models.UserStatusBlocked,
	} {
		users[string(st)] = userCounts[st]
	}

	posts := dto.PostCountsResponse{
		ByStatus: map[string]int64{},
		Active:   postCounts.Active,
		Inactive: postCounts.Inactive,
	}
	for _, st := range []models.PostStatus{
		models.PostStatusPendingReview,
		models.PostStatusPublished,
		models.PostStatusRejected,
		models.PostStatusHidden,
	} {
		posts.ByStatus[string(st)] = postCounts.ByStatus[st]
	}

	return &dto.OverviewResponse{
		Users:        users,
		Posts:        posts,
		PendingUsers: toUserResponses(pendingUsers),
		PendingPosts: toPostResponses(pendingPosts),
	}, nil
}
