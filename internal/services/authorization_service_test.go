package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
	"marketvue_backend/pkg/apperrors"
)

func TestRequireRoles(t *testing.T) {
	authz := NewAuthorizationService()
	superAdmin := &auth.Actor{ID: "1", Role: models.UserRoleSuperAdmin}
	admin := &auth.Actor{ID: "2", Role: models.UserRoleAdmin}

	// строгая проверка: SUPERADMIN не проходит на ADMIN-only
	assert.NoError(t, authz.RequireExactly(admin, models.UserRoleAdmin))
	assert.ErrorIs(t, authz.RequireExactly(superAdmin, models.UserRoleAdmin), apperrors.ErrInsufficientPermissions)
	assert.ErrorIs(t, authz.RequireExactly(nil, models.UserRoleAdmin), apperrors.ErrMissingToken)

	assert.NoError(t, authz.RequireAnyOf(superAdmin, models.UserRoleSuperAdmin, models.UserRoleAdmin))
	assert.ErrorIs(t, authz.RequireAnyOf(&auth.Actor{Role: models.UserRoleUser}, models.UserRoleSuperAdmin, models.UserRoleAdmin), apperrors.ErrInsufficientPermissions)
}

func TestAuthorizeUserUpdate(t *testing.T) {
	authz := NewAuthorizationService()
	superAdmin := &auth.Actor{ID: "root", Role: models.UserRoleSuperAdmin}
	admin := &auth.Actor{ID: "admin", Role: models.UserRoleAdmin}
	user := &auth.Actor{ID: "user", Role: models.UserRoleUser}

	target := &models.User{Role: models.UserRoleUser}
	target.ID = "target"
	rootTarget := &models.User{Role: models.UserRoleSuperAdmin}
	rootTarget.ID = "root"

	cases := []struct {
		name    string
		actor   *auth.Actor
		target  *models.User
		changes UserChanges
		want    apperrors.ErrorCode
	}{
		{"admin status", admin, target, UserChanges{Status: true}, ""},
		{"admin role", admin, target, UserChanges{Role: true}, apperrors.CodeInsufficientPermissions},
		{"admin name", admin, target, UserChanges{Name: true, Status: true}, apperrors.CodeInsufficientPermissions},
		{"admin on superadmin", admin, rootTarget, UserChanges{Status: true}, apperrors.CodeInsufficientPermissions},
		{"superadmin everything", superAdmin, target, UserChanges{Name: true, Email: true, Password: true, Role: true, Status: true}, ""},
		{"superadmin own role", superAdmin, rootTarget, UserChanges{Role: true}, apperrors.CodeCannotModifySelf},
		{"superadmin own name", superAdmin, rootTarget, UserChanges{Name: true}, ""},
		{"user status", user, target, UserChanges{Status: true}, apperrors.CodeInsufficientPermissions},
		{"no changes", user, target, UserChanges{}, ""},
		{"anonymous", nil, target, UserChanges{Status: true}, apperrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.AuthorizeUserUpdate(tc.actor, tc.target, tc.changes)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, tc.want), "got %v", err)
		})
	}
}

func TestCanManagePost(t *testing.T) {
	authz := NewAuthorizationService()
	post := &models.Post{UserID: "owner"}

	assert.True(t, authz.CanManagePost(&auth.Actor{ID: "owner", Role: models.UserRoleUser}, post))
	assert.True(t, authz.CanManagePost(&auth.Actor{ID: "mod", Role: models.UserRoleAdmin}, post))
	assert.False(t, authz.CanManagePost(&auth.Actor{ID: "other", Role: models.UserRoleUser}, post))
	assert.False(t, authz.CanManagePost(nil, post))
}
