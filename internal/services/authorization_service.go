package services

import (
	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
	"marketvue_backend/pkg/apperrors"
)

// UserChanges - какие поля пользователя запрос реально меняет
// (значение, равное сохраненному, изменением не считается).
type UserChanges struct {
	Name     bool
	Email    bool
	Password bool
	Role     bool
	Status   bool
}

// Privileged - измененные поля, которые может трогать только SUPERADMIN.
func (c UserChanges) Privileged() []string {
	var fields []string
	if c.Name {
		fields = append(fields, "name")
	}
	if c.Email {
		fields = append(fields, "email")
	}
	if c.Password {
		fields = append(fields, "password")
	}
	if c.Role {
		fields = append(fields, "role")
	}
	return fields
}

func (c UserChanges) Any() bool {
	return c.Name || c.Email || c.Password || c.Role || c.Status
}

// AuthorizationService - проверки ролей на уровне эндпоинта и на уровне полей.
type AuthorizationService interface {
	// RequireExactly - строгая проверка: роль актора должна совпадать
	RequireExactly(actor *auth.Actor, role models.UserRole) error
	// RequireAnyOf - роль актора должна входить в набор
	RequireAnyOf(actor *auth.Actor, roles ...models.UserRole) error
	// AuthorizeUserUpdate - проверка правки чужого аккаунта по измененным полям
	AuthorizeUserUpdate(actor *auth.Actor, target *models.User, changes UserChanges) error
	// AuthorizeUserModeration - смена статуса пользователя (approve/deny/block)
	AuthorizeUserModeration(actor *auth.Actor, target *models.User) error
	// CanManagePost - владелец или администратор
	CanManagePost(actor *auth.Actor, post *models.Post) bool
}

type AuthorizationServiceImpl struct{}

func NewAuthorizationService() AuthorizationService {
	return &AuthorizationServiceImpl{}
}

func (s *AuthorizationServiceImpl) RequireExactly(actor *auth.Actor, role models.UserRole) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	if actor.Role != role {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func (s *AuthorizationServiceImpl) RequireAnyOf(actor *auth.Actor, roles ...models.UserRole) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperrors.ErrInsufficientPermissions
}

func (s *AuthorizationServiceImpl) AuthorizeUserUpdate(actor *auth.Actor, target *models.User, changes UserChanges) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	if !changes.Any() {
		return nil
	}
	if actor.ID == target.ID && (changes.Role || changes.Status) {
		return apperrors.ErrCannotModifySelf
	}
	if target.Role == models.UserRoleSuperAdmin && !actor.Can(auth.PermUsersManageAdmins) && actor.ID != target.ID {
		return apperrors.ErrInsufficientPermissions.WithMessage("Only a superadmin can modify a superadmin account")
	}
	if fields := changes.Privileged(); len(fields) > 0 && !actor.Can(auth.PermUsersPrivileged) {
		return apperrors.ErrInsufficientPermissions.
			WithMessage("Insufficient permissions to change these fields").
			WithDetails(map[string][]string{"fields": fields})
	}
	if changes.Status && !actor.Can(auth.PermUsersModerate) {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func (s *AuthorizationServiceImpl) AuthorizeUserModeration(actor *auth.Actor, target *models.User) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	if actor.ID == target.ID {
		return apperrors.ErrCannotModifySelf
	}
	if !actor.Can(auth.PermUsersModerate) {
		return apperrors.ErrInsufficientPermissions
	}
	if target.Role == models.UserRoleSuperAdmin && !actor.Can(auth.PermUsersManageAdmins) {
		return apperrors.ErrInsufficientPermissions.WithMessage("Only a superadmin can modify a superadmin account")
	}
	return nil
}

func (s *AuthorizationServiceImpl) CanManagePost(actor *auth.Actor, post *models.Post) bool {
	if actor == nil {
		return false
	}
	return actor.ID == post.UserID || actor.Can(auth.PermPostsModerate)
}
