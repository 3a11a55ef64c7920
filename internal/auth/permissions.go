package auth

import "marketvue_backend/internal/models"

// Разрешения
const (
	PermDashboardRead     = "dashboard:read"
	PermUsersRead         = "users:read"
	PermUsersModerate     = "users:moderate"   // статус пользователя
	PermUsersPrivileged   = "users:privileged" // имя, email, пароль, роль чужого аккаунта
	PermUsersDelete       = "users:delete"
	PermPostsModerate     = "posts:moderate"
	PermPostsWriteSelf    = "posts:write:self"
	PermReviewsWrite      = "reviews:write"
	PermCategoriesWrite   = "categories:write"
	PermSupportManage     = "support:manage"
	PermSupportCreate     = "support:create"
	PermEventsRead        = "events:read"
	PermProfileWriteSelf  = "profile:write:self"
	PermPendingUsersRead  = "users:pending:read"
	PermUsersApproveDeny  = "users:approve"
	PermUsersManageAdmins = "users:manage:admins" // действия над SUPERADMIN
)

// Permissions - таблица ролей. Роли ниже наследуют только то, что перечислено явно.
var Permissions = map[models.UserRole][]string{
	models.UserRoleSuperAdmin: {
		PermDashboardRead,
		PermUsersRead,
		PermUsersModerate,
		PermUsersPrivileged,
		PermUsersDelete,
		PermUsersManageAdmins,
		PermPendingUsersRead,
		PermUsersApproveDeny,
		PermPostsModerate,
		PermPostsWriteSelf,
		PermReviewsWrite,
		PermCategoriesWrite,
		PermSupportManage,
		PermSupportCreate,
		PermEventsRead,
		PermProfileWriteSelf,
	},
	models.UserRoleAdmin: {
		PermDashboardRead,
		PermUsersRead,
		PermUsersModerate,
		PermPostsModerate,
		PermPostsWriteSelf,
		PermReviewsWrite,
		PermSupportManage,
		PermSupportCreate,
		PermEventsRead,
		PermProfileWriteSelf,
	},
	models.UserRoleUser: {
		PermPostsWriteSelf,
		PermReviewsWrite,
		PermSupportCreate,
		PermProfileWriteSelf,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Can - то же для актора; nil актор не может ничего.
func (a *Actor) Can(permission string) bool {
	return a != nil && HasPermission(a.Role, permission)
}
