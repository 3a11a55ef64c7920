// Package memory - in-memory реализация repositories.Store.
// Используется в тестах и как запасной режим, когда БД недоступна при старте.
package memory

import (
	"context"
	"sync"
	"time"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
)

type data struct {
	users      map[string]models.User
	posts      map[string]models.Post
	images     map[string]models.PostImage
	reviews    map[string]models.Review
	categories map[string]models.Category
	tokens     map[string]models.RefreshToken // ключ - строка токена
	events     []models.ModerationEvent
	tickets    map[string]models.SupportTicket
}

func newData() *data {
	return &data{
		users:      make(map[string]models.User),
		posts:      make(map[string]models.Post),
		images:     make(map[string]models.PostImage),
		reviews:    make(map[string]models.Review),
		categories: make(map[string]models.Category),
		tokens:     make(map[string]models.RefreshToken),
		tickets:    make(map[string]models.SupportTicket),
	}
}

func (d *data) clone() *data {
	cp := newData()
	for k, v := range d.users {
		cp.users[k] = v
	}
	for k, v := range d.posts {
		cp.posts[k] = v
	}
	for k, v := range d.images {
		cp.images[k] = v
	}
	for k, v := range d.reviews {
		cp.reviews[k] = v
	}
	for k, v := range d.categories {
		cp.categories[k] = v
	}
	for k, v := range d.tokens {
		cp.tokens[k] = v
	}
	cp.events = append([]models.ModerationEvent(nil), d.events...)
	for k, v := range d.tickets {
		cp.tickets[k] = v
	}
	return cp
}

// Store хранит все сущности в map'ах под одним мьютексом.
// Записи хранятся по значению, наружу отдаются копии.
type Store struct {
	mu     *sync.Mutex
	data   *data
	locked bool // true внутри Transaction: мьютекс уже захвачен
	now    func() time.Time
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		data: newData(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() repositories.UserRepository                 { return &userRepo{s} }
func (s *Store) Posts() repositories.PostRepository                 { return &postRepo{s} }
func (s *Store) Reviews() repositories.ReviewRepository             { return &reviewRepo{s} }
func (s *Store) Categories() repositories.CategoryRepository        { return &categoryRepo{s} }
func (s *Store) RefreshTokens() repositories.RefreshTokenRepository { return &tokenRepo{s} }
func (s *Store) Events() repositories.EventRepository               { return &eventRepo{s} }
func (s *Store) Tickets() repositories.TicketRepository             { return &ticketRepo{s} }

// Transaction держит мьютекс на все время fn и восстанавливает снимок данных при ошибке.
// Вложенный вызов выполняется в рамках внешней транзакции.
func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.locked {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, locked: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Mode() string {
	return "memory"
}

// SetClock подменяет источник времени (для тестов истечения токенов).
func (s *Store) SetClock(now func() time.Time) {
	unlock := s.lock()
	defer unlock()
	s.now = now
}

func (s *Store) touch(b *models.BaseModel) {
	b.EnsureID()
	b.Touch(s.now())
}
