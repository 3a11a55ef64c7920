package models

import (
	"strconv"
	"strings"
)

type UserRole string
type UserStatus string
type PostStatus string
type TicketStatus string

const (
	UserRoleSuperAdmin UserRole = "SUPERADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleUser       UserRole = "USER"

	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusDenied   UserStatus = "DENIED"
	UserStatusBlocked  UserStatus = "BLOCKED"

	PostStatusPendingReview PostStatus = "PENDING_REVIEW"
	PostStatusPublished     PostStatus = "PUBLISHED"
	PostStatusRejected      PostStatus = "REJECTED"
	PostStatusHidden        PostStatus = "HIDDEN"

	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// ============================================
// Роли
// ============================================

var roleTiers = map[UserRole]int{
	UserRoleSuperAdmin: 1,
	UserRoleAdmin:      2,
	UserRoleUser:       3,
}

// Старые названия ролей, которые до сих пор приходят от фронта.
var roleAliases = map[string]UserRole{
	"superadmin":          UserRoleSuperAdmin,
	"super_admin":         UserRoleSuperAdmin,
	"super administrador": UserRoleSuperAdmin,
	"superadministrador":  UserRoleSuperAdmin,
	"admin":               UserRoleAdmin,
	"administrador":       UserRoleAdmin,
	"user":                UserRoleUser,
	"usuario":             UserRoleUser,
	"publisher":           UserRoleUser,
}

// Tier возвращает уровень роли: 1 - самый привилегированный. 0 для неизвестной роли.
func (r UserRole) Tier() int {
	return roleTiers[r]
}

func (r UserRole) IsValid() bool {
	_, ok := roleTiers[r]
	return ok
}

// AtLeast - роль не ниже other по уровню привилегий.
func (r UserRole) AtLeast(other UserRole) bool {
	return r.IsValid() && other.IsValid() && r.Tier() <= other.Tier()
}

// RoleFromTier переводит номер уровня (1/2/3) в роль.
func RoleFromTier(tier int) (UserRole, bool) {
	for role, t := range roleTiers {
		if t == tier {
			return role, true
		}
	}
	return "", false
}

// ParseUserRole принимает имя роли без учета регистра, старое название или номер уровня.
func ParseUserRole(raw string) (UserRole, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	if tier, err := strconv.Atoi(v); err == nil {
		return RoleFromTier(tier)
	}
	if role := UserRole(strings.ToUpper(v)); role.IsValid() {
		return role, true
	}
	role, ok := roleAliases[strings.ToLower(v)]
	return role, ok
}

// ============================================
// Статусы пользователя
// ============================================

var userStatusAliases = map[string]UserStatus{
	"pending":   UserStatusPending,
	"pendiente": UserStatusPending,
	"approved":  UserStatusApproved,
	"aprobado":  UserStatusApproved,
	"denied":    UserStatusDenied,
	"rejected":  UserStatusDenied,
	"rechazado": UserStatusDenied,
	"denegado":  UserStatusDenied,
	"blocked":   UserStatusBlocked,
	"bloqueado": UserStatusBlocked,
}

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusDenied, UserStatusBlocked:
		return true
	}
	return false
}

// ParseUserStatus принимает каноническое значение или старый испанский вариант.
func ParseUserStatus(raw string) (UserStatus, bool) {
	status, ok := userStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// ============================================
// Статусы модерации поста
// ============================================

var postStatusAliases = map[string]PostStatus{
	"pending_review":     PostStatusPendingReview,
	"pending":            PostStatusPendingReview,
	"pendiente_revision": PostStatusPendingReview,
	"published":          PostStatusPublished,
	"publicada":          PostStatusPublished,
	"rejected":           PostStatusRejected,
	"rechazada":          PostStatusRejected,
	"hidden":             PostStatusHidden,
	"oculta":             PostStatusHidden,
}

func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusPendingReview, PostStatusPublished, PostStatusRejected, PostStatusHidden:
		return true
	}
	return false
}

// LocksOwnerToggle - в этих статусах владелец не может снова включить пост.
func (s PostStatus) LocksOwnerToggle() bool {
	return s == PostStatusRejected || s == PostStatusHidden
}

func ParsePostStatus(raw string) (PostStatus, bool) {
	status, ok := postStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

func (s TicketStatus) IsValid() bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}
