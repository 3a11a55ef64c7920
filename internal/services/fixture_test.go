package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/config"
	"marketvue_backend/internal/email"
	"marketvue_backend/internal/imageprocessor"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories/memory"
	"marketvue_backend/internal/storage"
)

type fixture struct {
	store   *memory.Store
	svc     *ServiceContainer
	mail    *email.MockProvider
	files   storage.Storage
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.BasePath = t.TempDir()

	files, err := storage.NewStorage(storage.ConfigFrom(cfg))
	require.NoError(t, err)
	renderer, err := email.NewDefaultTemplateManager()
	require.NoError(t, err)

	f := &fixture{
		store:   memory.NewStore(),
		mail:    email.NewMockProvider(renderer),
		files:   files,
		metrics: metrics.New(),
	}
	f.svc = NewServiceContainer(Deps{
		Config:    cfg,
		Store:     f.store,
		Tokens:    auth.NewTokenManager("unit-test-secret", time.Hour),
		Storage:   files,
		Processor: imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.ThumbnailWidth),
		Email:     f.mail,
		Metrics:   f.metrics,
	})
	return f
}

func (f *fixture) user(t *testing.T, name, email, password string, role models.UserRole, status models.UserStatus) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role, Status: status}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) actor(t *testing.T, role models.UserRole) *auth.Actor {
	t.Helper()
	u := f.user(t, string(role), uuid.NewString()+"@example.com", "password123", role, models.UserStatusApproved)
	return auth.ActorFromUser(u)
}

func (f *fixture) post(t *testing.T, owner string, status models.PostStatus, active bool) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner, Title: "Bicicleta", Price: 1000, Currency: "CLP", ReviewStatus: status, IsActive: active}
	require.NoError(t, f.store.Posts().Create(context.Background(), p))
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
