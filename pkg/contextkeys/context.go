package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// RequestIDKey - идентификатор запроса (X-Request-ID)
	RequestIDKey = contextKey("request_id")
	// UserIDKey - id аутентифицированного пользователя, только для логов
	UserIDKey = contextKey("user_id")
	// ActorKey - *auth.Actor, проверенный по токену и хранилищу
	ActorKey = contextKey("actor")
)

// Ключи gin.Context (c.Set/c.Get)
const (
	GinActorKey     = "actor"
	GinRequestIDKey = "request_id"
)
