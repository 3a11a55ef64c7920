package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketvue_backend/internal/models"

	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

// postViewRow - плоская строка выборки postViewSelect
type postViewRow struct {
	ID            string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        string
	CategoryID    *string
	Title         string
	Description   string
	Price         float64
	Currency      string
	ReviewStatus  models.PostStatus
	IsActive      bool
	SellerName    string
	SellerEmail   string
	CategoryName  *string
	CoverURL      *string
	AverageRating float64
	ReviewCount   int64
}

const postViewSelect = `posts.*,
	users.name AS seller_name,
	users.email AS seller_email,
	categories.name AS category_name,
	(SELECT pi.url FROM post_images pi WHERE pi.post_id = posts.id ORDER BY pi.is_cover DESC, pi.position ASC LIMIT 1) AS cover_url,
	(SELECT COALESCE(AVG(r.rating), 0) FROM reviews r WHERE r.post_id = posts.id) AS average_rating,
	(SELECT COUNT(*) FROM reviews r WHERE r.post_id = posts.id) AS review_count`

func (row postViewRow) toView() models.PostView {
	view := models.PostView{
		Post: models.Post{
			UserID:       row.UserID,
			CategoryID:   row.CategoryID,
			Title:        row.Title,
			Description:  row.Description,
			Price:        row.Price,
			Currency:     row.Currency,
			ReviewStatus: row.ReviewStatus,
			IsActive:     row.IsActive,
		},
		SellerName:    row.SellerName,
		SellerEmail:   row.SellerEmail,
		AverageRating: row.AverageRating,
		ReviewCount:   row.ReviewCount,
	}
	view.ID = row.ID
	view.CreatedAt = row.CreatedAt
	view.UpdatedAt = row.UpdatedAt
	if row.CategoryName != nil {
		view.CategoryName = *row.CategoryName
	}
	if row.CoverURL != nil {
		view.CoverURL = *row.CoverURL
	}
	return view
}

func (r *postRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id")
}

func applyPostFilter(q *gorm.DB, filter PostFilter) *gorm.DB {
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.description) LIKE ?)", like, like)
	}
	if filter.CategoryID != "" {
		q = q.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.MinPrice != nil {
		q = q.Where("posts.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("posts.price <= ?", *filter.MaxPrice)
	}
	return q
}

func (r *postRepository) listViews(q *gorm.DB, page Page) ([]models.PostView, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []postViewRow
	if err := paginate(q.Select(postViewSelect).Order("posts.created_at DESC"), page).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.toView())
	}
	return views, total, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindView(ctx context.Context, id string) (*models.PostView, error) {
	var rows []postViewRow
	if err := r.viewQuery(ctx).Select(postViewSelect).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}

	view := rows[0].toView()
	if err := r.db.WithContext(ctx).Where("post_id = ?", id).Order("position ASC").Find(&view.Images).Error; err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *postRepository) ListPublic(ctx context.Context, filter PostFilter) ([]models.PostView, int64, error) {
	q := r.viewQuery(ctx).
		Where("posts.review_status = ? AND posts.is_active = ?", models.PostStatusPublished, true)
	return r.listViews(applyPostFilter(q, filter), filter.Page)
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID string, filter PostFilter) ([]models.PostView, int64, error) {
	q := r.viewQuery(ctx).Where("posts.user_id = ?", ownerID)
	if filter.Status != "" {
		q = q.Where("posts.review_status = ?", filter.Status)
	}
	return r.listViews(applyPostFilter(q, filter), filter.Page)
}

func (r *postRepository) ListAll(ctx context.Context, filter PostFilter) ([]models.PostView, int64, error) {
	q := r.viewQuery(ctx)
	if filter.Status != "" {
		q = q.Where("posts.review_status = ?", filter.Status)
	}
	return r.listViews(applyPostFilter(q, filter), filter.Page)
}

func (r *postRepository) UpdateStatus(ctx context.Context, id string, status models.PostStatus) error {
	return r.updateColumn(ctx, id, "review_status", status)
}

func (r *postRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	// RowsAffected не проверяется: MySQL не считает строку без изменений
	return r.db.WithContext(ctx).Model(post).
		Select("title", "description", "price", "currency", "category_id", "review_status").
		Updates(post).Error
}

func (r *postRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("post_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) ImagesByOwner(ctx context.Context, ownerID string) ([]models.PostImage, error) {
	var images []models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id IN (?)", r.db.Model(&models.Post{}).Select("id").Where("user_id = ?", ownerID)).
		Find(&images).Error
	return images, err
}

func (r *postRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	db := r.db.WithContext(ctx)
	ownedIDs := r.db.Model(&models.Post{}).Select("id").Where("user_id = ?", ownerID)

	if err := db.Where("post_id IN (?)", ownedIDs).Delete(&models.Review{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("post_id IN (?)", ownedIDs).Delete(&models.PostImage{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("user_id = ?", ownerID).Delete(&models.Post{})
	return result.RowsAffected, result.Error
}

func (r *postRepository) CountByStatus(ctx context.Context) (*PostCounts, error) {
	var rows []struct {
		ReviewStatus models.PostStatus
		IsActive     bool
		Count        int64
	}
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("review_status, is_active, COUNT(*) AS count").
		Group("review_status, is_active").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &PostCounts{ByStatus: map[models.PostStatus]int64{
		models.PostStatusPendingReview: 0,
		models.PostStatusPublished:     0,
		models.PostStatusRejected:      0,
		models.PostStatusHidden:        0,
	}}
	for _, row := range rows {
		counts.ByStatus[row.ReviewStatus] += row.Count
		if row.IsActive {
			counts.Active += row.Count
		} else {
			counts.Inactive += row.Count
		}
	}
	return counts, nil
}
