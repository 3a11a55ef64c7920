package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, actor *auth.Actor) (*dto.UserResponse, error)
	// Authenticate проверяет access-токен и сверяет пользователя с хранилищем
	Authenticate(ctx context.Context, accessToken string) (*auth.Actor, error)
}

type AuthServiceImpl struct {
	store       repositories.Store
	tokens      *auth.TokenManager
	refreshTTL  time.Duration
	autoApprove bool
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewAuthService(
	store repositories.Store,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
	autoApprove bool,
	m *metrics.Metrics,
) AuthService {
	return &AuthServiceImpl{
		store:       store,
		tokens:      tokens,
		refreshTTL:  refreshTTL,
		autoApprove: autoApprove,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register - регистрация нового пользователя (роль USER, статус PENDING)
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := passwordError(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, handleRepoError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	status := models.UserStatusPending
	if s.autoApprove {
		status = models.UserStatusApproved
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		Status:       status,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "status", user.Status)
	return toUserResponse(user), nil
}

// Login проверяет пароль и статус. Неизвестный email и неверный пароль дают
// одинаковый 401; верный пароль при статусе != APPROVED дает 403.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			auth.CheckDummy(req.Password)
			s.metrics.Login("invalid_credentials")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, handleRepoError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.metrics.Login("invalid_credentials")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsApproved() {
		s.metrics.Login("not_approved")
		return nil, apperrors.ErrAccountNotApproved.WithDetails(map[string]string{"status": string(user.Status)})
	}

	now := s.now()
	if err := s.store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, handleRepoError(err)
	}
	user.LastLoginAt = &now

	resp, err := s.issueTokens(ctx, s.store, user)
	if err != nil {
		return nil, err
	}

	s.metrics.Login("ok")
	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return resp, nil
}

// Refresh выдает новую пару токенов; старый refresh-токен удаляется (ротация).
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	var resp *dto.AuthResponse
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		stored, err := tx.RefreshTokens().FindByToken(ctx, refreshToken)
		if err != nil {
			return handleRepoError(err)
		}
		if err := tx.RefreshTokens().DeleteByToken(ctx, refreshToken); err != nil {
			return handleRepoError(err)
		}
		if stored.Expired(s.now()) {
			return apperrors.ErrInvalidToken
		}

		user, err := tx.Users().FindByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrInvalidToken
			}
			return handleRepoError(err)
		}
		if !user.IsApproved() {
			return apperrors.ErrAccountNotApproved
		}

		resp, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		// просроченный токен удаляем даже при ошибке
		if apperrors.HasCode(err, apperrors.CodeInvalidToken) {
			_ = s.store.RefreshTokens().DeleteByToken(ctx, refreshToken)
		}
		return nil, err
	}
	return resp, nil
}

// Logout удаляет refresh-токен; повторный выход не ошибка
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	err := s.store.RefreshTokens().DeleteByToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return handleRepoError(err)
	}
	return nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, actor *auth.Actor) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return toUserResponse(user), nil
}

// Authenticate - роль берется из хранилища, а не из токена: смена роли
// или блокировка действуют сразу, не дожидаясь истечения токена.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (*auth.Actor, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.store.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, handleRepoError(err)
	}
	if !user.IsApproved() {
		return nil, apperrors.ErrAccountNotApproved.WithDetails(map[string]string{"status": string(user.Status)})
	}
	if claims.Role != user.Role {
		logger.CtxWarn(ctx, "token role differs from stored role", "user_id", user.ID,
			"token_role", claims.Role, "stored_role", user.Role)
	}

	return auth.ActorFromUser(user), nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, store repositories.Store, user *models.User) (*dto.AuthResponse, error) {
	accessToken, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := store.RefreshTokens().Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}); err != nil {
		return nil, handleRepoError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}
