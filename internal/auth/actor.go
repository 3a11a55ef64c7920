package auth

import (
	"context"

	"marketvue_backend/internal/models"
	"marketvue_backend/pkg/contextkeys"
)

// Actor - аутентифицированный пользователь, выполняющий операцию.
// Роль и статус берутся из хранилища, а не из токена.
type Actor struct {
	ID     string
	Name   string
	Email  string
	Role   models.UserRole
	Status models.UserStatus
}

// ActorFromUser строит актора по записи из хранилища.
func ActorFromUser(u *models.User) *Actor {
	return &Actor{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}

func (a *Actor) IsSuperAdmin() bool {
	return a != nil && a.Role == models.UserRoleSuperAdmin
}

// WithActor кладет актора в context запроса.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

// ActorFromContext достает актора; nil для анонимного запроса.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(contextkeys.ActorKey).(*Actor)
	return actor
}
