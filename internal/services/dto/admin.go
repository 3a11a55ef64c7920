package dto

import (
	"encoding/json"
	"time"
)

type PostCountsResponse struct {
	ByStatus map[string]int64 `json:"by_status"`
	Active   int64            `json:"active"`
	Inactive int64            `json:"inactive"`
}

// OverviewResponse - сводка для админ-панели
type OverviewResponse struct {
	Users        map[string]int64   `json:"users"`
	Posts        PostCountsResponse `json:"posts"`
	PendingUsers []*UserResponse    `json:"pending_users"`
	PendingPosts []*PostResponse    `json:"pending_posts"`
}

type EventResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Entity     string          `json:"entity"`
	EntityID   string          `json:"entity_id"`
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=120"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Body    string `json:"body" validate:"required,min=3,max=5000"`
}

type TicketResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TicketListResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
}
