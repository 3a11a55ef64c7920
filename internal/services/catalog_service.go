package services

import (
	"context"
	"strings"
	"unicode"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, actor *auth.Actor, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
}

type catalogService struct {
	store repositories.Store
}

func NewCatalogService(store repositories.Store) CatalogService {
	return &catalogService{store: store}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, handleRepoError(err)
	}
	out := make([]*dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	return out, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, actor *auth.Actor, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	if !actor.Can(auth.PermCategoriesWrite) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	name := strings.TrimSpace(req.Name)
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, apperrors.ValidationError(map[string]string{"slug": "cannot be derived from name"})
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "category created", "category_id", category.ID, "slug", slug)
	return toCategoryResponse(category), nil
}

var slugReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

// Slugify: "Hogar y Jardín" -> "hogar-y-jardin"
func Slugify(s string) string {
	s = slugReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
