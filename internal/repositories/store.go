package repositories

import (
	"context"
	"errors"
	"time"

	"marketvue_backend/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrPostNotFound          = errors.New("post not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrRefreshTokenNotFound  = errors.New("refresh token not found")
	ErrTicketNotFound        = errors.New("ticket not found")
)

// Store - хранилище, выбирается один раз при старте процесса (gorm или in-memory)
// и передается в сервисы. Сервисы не знают, какая реализация под ним.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Reviews() ReviewRepository
	Categories() CategoryRepository
	RefreshTokens() RefreshTokenRepository
	Events() EventRepository
	Tickets() TicketRepository

	// Transaction выполняет fn атомарно: при ошибке все изменения откатываются.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	// Mode - "postgres", "mysql" или "memory"
	Mode() string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// ListByStatus - самые старые первыми; limit <= 0 - без ограничения
	ListByStatus(ctx context.Context, status models.UserStatus, limit int) ([]models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.UserStatus]int64, error)
}

type PostRepository interface {
	// Create сохраняет пост вместе с post.Images
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	// FindView - пост с продавцом, категорией, обложкой, рейтингом и картинками
	FindView(ctx context.Context, id string) (*models.PostView, error)
	ListPublic(ctx context.Context, filter PostFilter) ([]models.PostView, int64, error)
	ListByOwner(ctx context.Context, ownerID string, filter PostFilter) ([]models.PostView, int64, error)
	ListAll(ctx context.Context, filter PostFilter) ([]models.PostView, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.PostStatus) error
	SetActive(ctx context.Context, id string, active bool) error
	// Update сохраняет редактируемые поля и статус модерации
	Update(ctx context.Context, post *models.Post) error
	// Delete удаляет пост, его картинки и отзывы к нему
	Delete(ctx context.Context, id string) error
	ImagesByOwner(ctx context.Context, ownerID string) ([]models.PostImage, error)
	// DeleteByOwner удаляет все посты пользователя с картинками и отзывами к ним
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
	CountByStatus(ctx context.Context) (*PostCounts, error)
}

type ReviewRepository interface {
	// Upsert создает отзыв или перезаписывает rating/comment существующего для пары (post, user)
	Upsert(ctx context.Context, review *models.Review) (created bool, err error)
	ListByPost(ctx context.Context, postID string) ([]models.Review, error)
	Stats(ctx context.Context, postID string) (*models.ReviewStats, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type EventRepository interface {
	Record(ctx context.Context, event *models.ModerationEvent) error
	// ListRecent - новые первыми; entity "" - все сущности
	ListRecent(ctx context.Context, entity string, limit int) ([]models.ModerationEvent, error)
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	FindByID(ctx context.Context, id string) (*models.SupportTicket, error)
	List(ctx context.Context, status models.TicketStatus, page Page) ([]models.SupportTicket, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// ============================================
// Фильтры
// ============================================

// Page - 1-based пагинация
type Page struct {
	Page     int
	PageSize int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Page) Limit() int {
	return p.Normalize().PageSize
}

type UserFilter struct {
	Status models.UserStatus
	Role   models.UserRole
	Search string // по имени и email
	Page
}

type PostFilter struct {
	Query      string // по заголовку и описанию
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Status     models.PostStatus // только для ListAll/ListByOwner
	Page
}

type PostCounts struct {
	ByStatus map[models.PostStatus]int64
	Active   int64
	Inactive int64
}
