package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore - постоянное хранилище поверх GORM (postgres или mysql).
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *gormStore) Posts() PostRepository                 { return &postRepository{db: s.db} }
func (s *gormStore) Reviews() ReviewRepository             { return &reviewRepository{db: s.db} }
func (s *gormStore) Categories() CategoryRepository        { return &categoryRepository{db: s.db} }
func (s *gormStore) RefreshTokens() RefreshTokenRepository { return &refreshTokenRepository{db: s.db} }
func (s *gormStore) Events() EventRepository               { return &eventRepository{db: s.db} }
func (s *gormStore) Tickets() TicketRepository             { return &ticketRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *gormStore) Mode() string {
	return s.db.Dialector.Name()
}

// isDuplicate - нарушение уникального индекса (нужен gorm.Config{TranslateError: true}).
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func paginate(q *gorm.DB, p Page) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Limit())
}
