package memory

import (
	"context"
	"sort"
	"strings"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
)

type postRepo struct {
	s *Store
}

func (r *postRepo) Create(_ context.Context, post *models.Post) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.users[post.UserID]; !ok {
		return repositories.ErrUserNotFound
	}
	if post.CategoryID != nil {
		if _, ok := r.s.data.categories[*post.CategoryID]; !ok {
			return repositories.ErrCategoryNotFound
		}
	}

	r.s.touch(&post.BaseModel)
	for i := range post.Images {
		post.Images[i].PostID = post.ID
		r.s.touch(&post.Images[i].BaseModel)
		r.s.data.images[post.Images[i].ID] = post.Images[i]
	}
	stored := *post
	stored.Images, stored.Reviews, stored.User, stored.Category = nil, nil, nil, nil
	r.s.data.posts[post.ID] = stored
	return nil
}

func (r *postRepo) FindByID(_ context.Context, id string) (*models.Post, error) {
	unlock := r.s.lock()
	defer unlock()

	p, ok := r.s.data.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	p.Images = r.imagesOf(id)
	return &p, nil
}

func (r *postRepo) FindView(_ context.Context, id string) (*models.PostView, error) {
	unlock := r.s.lock()
	defer unlock()

	p, ok := r.s.data.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	view := r.view(p)
	view.Images = r.imagesOf(id)
	return &view, nil
}

func (r *postRepo) ListPublic(_ context.Context, filter repositories.PostFilter) ([]models.PostView, int64, error) {
	unlock := r.s.lock()
	defer unlock()

	filter.Status = ""
	return r.list(filter, func(p *models.Post) bool { return p.Listable() })
}

func (r *postRepo) ListByOwner(_ context.Context, ownerID string, filter repositories.PostFilter) ([]models.PostView, int64, error) {
	unlock := r.s.lock()
	defer unlock()

	return r.list(filter, func(p *models.Post) bool { return p.UserID == ownerID })
}

func (r *postRepo) ListAll(_ context.Context, filter repositories.PostFilter) ([]models.PostView, int64, error) {
	unlock := r.s.lock()
	defer unlock()

	return r.list(filter, func(*models.Post) bool { return true })
}

func (r *postRepo) UpdateStatus(_ context.Context, id string, status models.PostStatus) error {
	return r.update(id, func(p *models.Post) { p.ReviewStatus = status })
}

func (r *postRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(p *models.Post) { p.IsActive = active })
}

func (r *postRepo) Update(_ context.Context, post *models.Post) error {
	unlock := r.s.lock()
	defer unlock()

	stored, ok := r.s.data.posts[post.ID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	if post.CategoryID != nil {
		if _, ok := r.s.data.categories[*post.CategoryID]; !ok {
			return repositories.ErrCategoryNotFound
		}
	}
	stored.Title = post.Title
	stored.Description = post.Description
	stored.Price = post.Price
	stored.Currency = post.Currency
	stored.CategoryID = post.CategoryID
	stored.ReviewStatus = post.ReviewStatus
	stored.UpdatedAt = r.s.now()
	r.s.data.posts[post.ID] = stored
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *postRepo) Delete(_ context.Context, id string) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	r.deletePost(id)
	return nil
}

func (r *postRepo) ImagesByOwner(_ context.Context, ownerID string) ([]models.PostImage, error) {
	unlock := r.s.lock()
	defer unlock()

	var images []models.PostImage
	for _, img := range r.s.data.images {
		if p, ok := r.s.data.posts[img.PostID]; ok && p.UserID == ownerID {
			images = append(images, img)
		}
	}
	return images, nil
}

func (r *postRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var n int64
	for id, p := range r.s.data.posts {
		if p.UserID == ownerID {
			r.deletePost(id)
			n++
		}
	}
	return n, nil
}

func (r *postRepo) CountByStatus(_ context.Context) (*repositories.PostCounts, error) {
	unlock := r.s.lock()
	defer unlock()

	counts := &repositories.PostCounts{ByStatus: map[models.PostStatus]int64{
		models.PostStatusPendingReview: 0,
		models.PostStatusPublished:     0,
		models.PostStatusRejected:      0,
		models.PostStatusHidden:        0,
	}}
	for _, p := range r.s.data.posts {
		counts.ByStatus[p.ReviewStatus]++
		if p.IsActive {
			counts.Active++
		} else {
			counts.Inactive++
		}
	}
	return counts, nil
}

// --- внутренние помощники, вызываются под мьютексом ---

func (r *postRepo) update(id string, fn func(p *models.Post)) error {
	unlock := r.s.lock()
	defer unlock()

	p, ok := r.s.data.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	fn(&p)
	p.UpdatedAt = r.s.now()
	r.s.data.posts[id] = p
	return nil
}

func (r *postRepo) deletePost(id string) {
	for rid, rv := range r.s.data.reviews {
		if rv.PostID == id {
			delete(r.s.data.reviews, rid)
		}
	}
	for iid, img := range r.s.data.images {
		if img.PostID == id {
			delete(r.s.data.images, iid)
		}
	}
	delete(r.s.data.posts, id)
}

func (r *postRepo) imagesOf(postID string) []models.PostImage {
	var images []models.PostImage
	for _, img := range r.s.data.images {
		if img.PostID == postID {
			images = append(images, img)
		}
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Position < images[j].Position })
	return images
}

func (r *postRepo) view(p models.Post) models.PostView {
	view := models.PostView{Post: p}
	if u, ok := r.s.data.users[p.UserID]; ok {
		view.SellerName = u.Name
		view.SellerEmail = u.Email
	}
	if p.CategoryID != nil {
		if c, ok := r.s.data.categories[*p.CategoryID]; ok {
			view.CategoryName = c.Name
		}
	}

	images := r.imagesOf(p.ID)
	for _, img := range images {
		if img.IsCover {
			view.CoverURL = img.URL
			break
		}
	}
	if view.CoverURL == "" && len(images) > 0 {
		view.CoverURL = images[0].URL
	}

	stats := statsOf(r.s.data, p.ID)
	view.AverageRating = stats.AverageRating
	view.ReviewCount = stats.ReviewCount
	return view
}

func (r *postRepo) list(filter repositories.PostFilter, keep func(p *models.Post) bool) ([]models.PostView, int64, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var posts []models.Post
	for _, p := range r.s.data.posts {
		if !keep(&p) {
			continue
		}
		if filter.Status != "" && p.ReviewStatus != filter.Status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if filter.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })

	page := pageOf(posts, filter.Page)
	views := make([]models.PostView, 0, len(page))
	for _, p := range page {
		views = append(views, r.view(p))
	}
	return views, int64(len(posts)), nil
}
