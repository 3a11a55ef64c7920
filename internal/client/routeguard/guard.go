// Package routeguard решает, можно ли клиенту открыть маршрут, по локальному снимку сессии.
// Это только удобство интерфейса: сервер проверяет права сам.
package routeguard

import (
	"net/url"
	"strings"

	"marketvue_backend/internal/client/session"
	"marketvue_backend/internal/models"
)

// RoleRef - ссылка на роль: номер уровня или имя (без учета регистра, старые имена тоже).
type RoleRef struct {
	Tier int
	Name string
}

func Tier(tier int) RoleRef {
	return RoleRef{Tier: tier}
}

func Named(name string) RoleRef {
	return RoleRef{Name: name}
}

// Matches сравнивает ссылку с ролью из сессии.
func (r RoleRef) Matches(roleName string, roleTier int) bool {
	if roleTier == 0 {
		if role, ok := models.ParseUserRole(roleName); ok {
			roleTier = role.Tier()
		}
	}
	if r.Tier > 0 {
		return roleTier == r.Tier
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		return false
	}
	if strings.EqualFold(name, strings.TrimSpace(roleName)) {
		return true
	}
	want, ok := models.ParseUserRole(name)
	if !ok {
		return false
	}
	got, ok := models.ParseUserRole(roleName)
	return ok && got == want
}

type Route struct {
	Name         string
	Path         string
	AuthRequired bool
	AllowedRoles []RoleRef
}

type Action int

const (
	Allow Action = iota
	RedirectLogin
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Decision - результат проверки. Target пуст для Allow.
type Decision struct {
	Action Action
	Target string
}

func (d Decision) Allowed() bool {
	return d.Action == Allow
}

type Guard struct {
	LoginPath string
	HomePath  string
}

func New() *Guard {
	return &Guard{LoginPath: "/login", HomePath: "/publicaciones"}
}

// Resolve никогда не возвращает ошибку: при нехватке прав - только редирект.
func (g *Guard) Resolve(route Route, sess *session.Session) Decision {
	needsAuth := route.AuthRequired || len(route.AllowedRoles) > 0
	if !sess.Authenticated() {
		if needsAuth {
			return Decision{Action: RedirectLogin, Target: g.loginTarget(route.Path)}
		}
		return Decision{Action: Allow}
	}

	if len(route.AllowedRoles) == 0 {
		return Decision{Action: Allow}
	}
	for _, ref := range route.AllowedRoles {
		if ref.Matches(sess.User.Role, sess.User.RoleTier) {
			return Decision{Action: Allow}
		}
	}
	return Decision{Action: RedirectHome, Target: g.HomePath}
}

func (g *Guard) loginTarget(next string) string {
	if next == "" {
		return g.LoginPath
	}
	return g.LoginPath + "?next=" + url.QueryEscape(next)
}
