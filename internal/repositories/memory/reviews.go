package memory

import (
	"context"
	"sort"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
)

type reviewRepo struct {
	s *Store
}

func (r *reviewRepo) Upsert(_ context.Context, review *models.Review) (bool, error) {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.data.posts[review.PostID]; !ok {
		return false, repositories.ErrPostNotFound
	}

	for id, existing := range r.s.data.reviews {
		if existing.PostID == review.PostID && existing.UserID == review.UserID {
			existing.Rating = review.Rating
			existing.Comment = review.Comment
			existing.UpdatedAt = r.s.now()
			r.s.data.reviews[id] = existing
			*review = existing
			return false, nil
		}
	}

	r.s.touch(&review.BaseModel)
	stored := *review
	stored.User = nil
	r.s.data.reviews[review.ID] = stored
	return true, nil
}

func (r *reviewRepo) ListByPost(_ context.Context, postID string) ([]models.Review, error) {
	unlock := r.s.lock()
	defer unlock()

	var reviews []models.Review
	for _, rv := range r.s.data.reviews {
		if rv.PostID != postID {
			continue
		}
		if u, ok := r.s.data.users[rv.UserID]; ok {
			rv.User = &u
		}
		reviews = append(reviews, rv)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].UpdatedAt.After(reviews[j].UpdatedAt) })
	return reviews, nil
}

func (r *reviewRepo) Stats(_ context.Context, postID string) (*models.ReviewStats, error) {
	unlock := r.s.lock()
	defer unlock()

	return statsOf(r.s.data, postID), nil
}

func (r *reviewRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	unlock := r.s.lock()
	defer unlock()

	var n int64
	for id, rv := range r.s.data.reviews {
		if rv.UserID == userID {
			delete(r.s.data.reviews, id)
			n++
		}
	}
	return n, nil
}

func statsOf(d *data, postID string) *models.ReviewStats {
	counts := make(map[int]int64)
	for _, rv := range d.reviews {
		if rv.PostID == postID {
			counts[rv.Rating]++
		}
	}
	return repositories.ReviewStatsFromCounts(counts)
}
