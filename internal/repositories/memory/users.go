package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	unlock := r.s.lock()
	defer unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	r.s.touch(&user.BaseModel)
	stored := *user
	stored.Posts, stored.RefreshTokens = nil, nil
	r.s.data.users[user.ID] = stored
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) ListByStatus(_ context.Context, status models.UserStatus, limit int) ([]models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	var users []models.User
	for _, u := range r.s.data.users {
		if u.Status == status {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepo) List(_ context.Context, filter repositories.UserFilter) ([]models.User, int64, error) {
	unlock := r.s.lock()
	defer unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var users []models.User
	for _, u := range r.s.data.users {
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(u.Email, search) {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return pageOf(users, filter.Page), int64(len(users)), nil
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	unlock := r.s.lock()
	defer unlock()

	stored, ok := r.s.data.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for id, u := range r.s.data.users {
		if id != user.ID && u.Email == email {
			return repositories.ErrUserAlreadyExists
		}
	}
	stored.Name = user.Name
	stored.Email = email
	stored.PasswordHash = user.PasswordHash
	stored.Role = user.Role
	stored.Status = user.Status
	stored.UpdatedAt = r.s.now()
	r.s.data.users[user.ID] = stored
	user.Email = email
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepo) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	unlock := r.s.lock()
	defer unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	u.UpdatedAt = r.s.now()
	r.s.data.users[id] = u
	return nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	unlock := r.s.lock()
	defer unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.LastLoginAt = &at
	r.s.data.users[id] = u
	return nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *userRepo) CountByStatus(_ context.Context) (map[models.UserStatus]int64, error) {
	unlock := r.s.lock()
	defer unlock()

	counts := map[models.UserStatus]int64{
		models.UserStatusPending:  0,
		models.UserStatusApproved: 0,
		models.UserStatusDenied:   0,
		models.UserStatusBlocked:  0,
	}
	for _, u := range r.s.data.users {
		counts[u.Status]++
	}
	return counts, nil
}

func pageOf[T any](items []T, p repositories.Page) []T {
	offset, limit := p.Offset(), p.Limit()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
