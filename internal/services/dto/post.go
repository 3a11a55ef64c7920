package dto

import (
	"encoding/json"
	"strings"
	"time"
)

// CreatePostRequest - multipart/form-data (картинка в поле image)
type CreatePostRequest struct {
	Title       string  `form:"title" json:"title" validate:"required,min=3,max=200"`
	Description string  `form:"description" json:"description" validate:"max=5000"`
	Price       float64 `form:"price" json:"price" validate:"is-price"`
	Currency    string  `form:"currency" json:"currency" validate:"omitempty,is-currency"`
	CategoryID  string  `form:"category_id" json:"category_id" validate:"omitempty,max=36"`
}

// UpdatePostRequest - частичная правка; пустой category_id снимает категорию
type UpdatePostRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,is-price"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,is-currency"`
	CategoryID  *string  `json:"category_id,omitempty" validate:"omitempty,max=36"`
}

func (r *UpdatePostRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Price == nil && r.Currency == nil && r.CategoryID == nil
}

// UploadedImage - прочитанный файл из multipart
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PostListQuery - фильтры ленты
type PostListQuery struct {
	Query      string   `form:"q" validate:"max=100"`
	CategoryID string   `form:"category_id"`
	MinPrice   *float64 `form:"min_price" validate:"omitempty,is-price"`
	MaxPrice   *float64 `form:"max_price" validate:"omitempty,is-price"`
	Status     string   `form:"status" validate:"omitempty,is-post-status"`
	Page       int      `form:"page"`
	PageSize   int      `form:"page_size"`
}

// UpdatePostStatusRequest - смена статуса модерации (принимает и ключ estado)
type UpdatePostStatusRequest struct {
	Status string `json:"status" validate:"required,is-post-status"`
}

func (r *UpdatePostStatusRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range []string{"status", "review_status", "estado"} {
		if v, ok := raw[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			r.Status = strings.TrimSpace(s)
			return nil
		}
	}
	return nil
}

// ToggleActiveRequest - пустое тело переключает флаг, is_active задает явно
type ToggleActiveRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
}

type SellerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CategoryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ImageResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Position     int    `json:"position"`
	IsCover      bool   `json:"is_cover"`
}

// PostResponse - проекция поста с продавцом, категорией и рейтингом
type PostResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	Currency      string          `json:"currency"`
	ReviewStatus  string          `json:"review_status"`
	IsActive      bool            `json:"is_active"`
	Listable      bool            `json:"listable"`
	Seller        SellerInfo      `json:"seller"`
	Category      *CategoryInfo   `json:"category,omitempty"`
	CoverURL      string          `json:"cover_url,omitempty"`
	Images        []ImageResponse `json:"images,omitempty"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PostListResponse struct {
	Posts      []*PostResponse `json:"posts"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}
