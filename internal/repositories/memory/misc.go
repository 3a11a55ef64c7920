package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
)

// ============================================
// Categories
// ============================================

type categoryRepo struct {
	s *Store
}

func (r *categoryRepo) List(_ context.Context) ([]models.Category, error) {
	unlock := r.s.lock()
	defer unlock()

	categories := make([]models.Category, 0, len(r.s.data.categories))
	for _, c := range r.s.data.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *categoryRepo) Create(_ context.Context, category *models.Category) error {
	unlock := r.s.lock()
	defer unlock()

	for _, c := range r.s.data.categories {
		if strings.EqualFold(c.Name, category.Name) || c.Slug == category.Slug {
			return repositories.ErrCategoryAlreadyExists
		}
	}
	r.s.touch(&category.BaseModel)
	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) FindByID(_ context.Context, id string) (*models.Category, error) {
	unlock := r.s.lock()
	defer unlock()

	c, ok := r.s.data.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	return &c, nil
}

// ============================================
// Refresh tokens
// ============================================

type tokenRepo struct {
	s *Store
}

func (r *tokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	unlock := r.s.lock()
	defer unlock()

	r.s.touch(&token.BaseModel)
	r.s.data.tokens[token.Token] = *token
	return nil
}

func (r *tokenRepo) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	unlock := r.s.lock()
	defer unlock()

	t, ok := r.s.data.tokens[token]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	return &t, nil
}

func (r *tokenRepo) DeleteByToken(_ context.Context, token string) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.tokens[token]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.s.data.tokens, token)
	return nil
}

func (r *tokenRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var n int64
	for key, t := range r.s.data.tokens {
		if t.UserID == userID {
			delete(r.s.data.tokens, key)
			n++
		}
	}
	return n, nil
}

func (r *tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var n int64
	for key, t := range r.s.data.tokens {
		if t.Expired(now) {
			delete(r.s.data.tokens, key)
			n++
		}
	}
	return n, nil
}

// ============================================
// Moderation events
// ============================================

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Record(_ context.Context, event *models.ModerationEvent) error {
	unlock := r.s.lock()
	defer unlock()

	r.s.touch(&event.BaseModel)
	r.s.data.events = append(r.s.data.events, *event)
	return nil
}

func (r *eventRepo) ListRecent(_ context.Context, entity string, limit int) ([]models.ModerationEvent, error) {
	unlock := r.s.lock()
	defer unlock()

	var events []models.ModerationEvent
	for i := len(r.s.data.events) - 1; i >= 0; i-- {
		e := r.s.data.events[i]
		if entity != "" && e.Entity != entity {
			continue
		}
		events = append(events, e)
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

// ============================================
// Support tickets
// ============================================

type ticketRepo struct {
	s *Store
}

func (r *ticketRepo) Create(_ context.Context, ticket *models.SupportTicket) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.users[ticket.UserID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.s.touch(&ticket.BaseModel)
	r.s.data.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) FindByID(_ context.Context, id string) (*models.SupportTicket, error) {
	unlock := r.s.lock()
	defer unlock()

	t, ok := r.s.data.tickets[id]
	if !ok {
		return nil, repositories.ErrTicketNotFound
	}
	return &t, nil
}

func (r *ticketRepo) List(_ context.Context, status models.TicketStatus, page repositories.Page) ([]models.SupportTicket, int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var tickets []models.SupportTicket
	for _, t := range r.s.data.tickets {
		if status == "" || t.Status == status {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return pageOf(tickets, page), int64(len(tickets)), nil
}

func (r *ticketRepo) UpdateStatus(_ context.Context, id string, status models.TicketStatus) error {
	unlock := r.s.lock()
	defer unlock()

	t, ok := r.s.data.tickets[id]
	if !ok {
		return repositories.ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = r.s.now()
	r.s.data.tickets[id] = t
	return nil
}

func (r *ticketRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var n int64
	for id, t := range r.s.data.tickets {
		if t.UserID == userID {
			delete(r.s.data.tickets, id)
			n++
		}
	}
	return n, nil
}
