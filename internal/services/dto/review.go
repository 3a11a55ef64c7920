package dto

import "time"

type UpsertReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RatingStats struct {
	AverageRating float64       `json:"average_rating"`
	ReviewCount   int64         `json:"review_count"`
	Breakdown     map[int]int64 `json:"breakdown"`
}

type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
	Stats   RatingStats       `json:"stats"`
}

// UpsertReviewResponse - Created=false, если перезаписан существующий отзыв
type UpsertReviewResponse struct {
	Review  *ReviewResponse `json:"review"`
	Created bool            `json:"created"`
	Stats   RatingStats     `json:"stats"`
}
