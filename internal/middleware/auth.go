package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/pkg/apperrors"
	"marketvue_backend/pkg/contextkeys"
)

// AuthMiddleware - проверка bearer-токена. Актор (с ролью из хранилища)
// кладется и в gin.Context, и в context запроса. Заголовки с ролью или id
// от клиента не читаются.
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}

		actor, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			apperrors.AbortWithError(c, err)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth - для публичных маршрутов: валидный токен расширяет видимость,
// отсутствующий или невалидный токен означает анонима.
func OptionalAuth(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if actor, err := authService.Authenticate(c.Request.Context(), token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

// RoleMiddleware - строгая проверка: роль актора должна совпадать с requiredRole
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}

		if actor.Role != requiredRole {
			apperrors.AbortWithError(c, apperrors.ErrInsufficientPermissions)
			return
		}

		c.Next()
	}
}

// RequireRoles - роль актора должна входить в набор
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			apperrors.AbortWithError(c, apperrors.ErrMissingToken)
			return
		}

		if !roleSet[actor.Role] {
			apperrors.AbortWithError(c, apperrors.ErrInsufficientPermissions)
			return
		}

		c.Next()
	}
}

// GetActor извлекает актора из контекста; nil для анонима
func GetActor(c *gin.Context) *auth.Actor {
	val, exists := c.Get(contextkeys.GinActorKey)
	if !exists {
		return nil
	}
	actor, _ := val.(*auth.Actor)
	return actor
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	if actor := GetActor(c); actor != nil {
		return actor.ID
	}
	return ""
}

func setActor(c *gin.Context, actor *auth.Actor) {
	c.Set(contextkeys.GinActorKey, actor)
	ctx := auth.WithActor(c.Request.Context(), actor)
	ctx = logger.WithUserID(ctx, actor.ID)
	c.Request = c.Request.WithContext(ctx)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
