package services

import (
	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/config"
	"marketvue_backend/internal/email"
	"marketvue_backend/internal/imageprocessor"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/storage"
)

// Deps - внешние зависимости сервисов, собираются в app.
type Deps struct {
	Config    *config.Config
	Store     repositories.Store
	Tokens    *auth.TokenManager
	Storage   storage.Storage
	Processor *imageprocessor.Processor
	Email     email.Provider
	Metrics   *metrics.Metrics
}

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	Authorization AuthorizationService
	Auth          AuthService
	Moderation    ModerationService
	Users         UserService
	Posts         PostService
	Reviews       ReviewService
	Catalog       CatalogService
	Support       SupportService
	Notifier      *Notifier
}

func NewServiceContainer(d Deps) *ServiceContainer {
	authz := NewAuthorizationService()
	notifier := NewNotifier(d.Email)

	return &ServiceContainer{
		Authorization: authz,
		Auth:          NewAuthService(d.Store, d.Tokens, d.Config.RefreshTTL(), d.Config.Auth.AutoApprove, d.Metrics),
		Moderation:    NewModerationService(d.Store, authz, d.Metrics, notifier),
		Users:         NewUserService(d.Store, authz, d.Storage, d.Metrics, notifier),
		Posts: NewPostService(d.Store, authz, d.Storage, d.Processor, UploadPolicy{
			MaxSize:      d.Config.Upload.MaxSize,
			AllowedTypes: d.Config.Upload.AllowedTypes,
		}),
		Reviews:  NewReviewService(d.Store, authz),
		Catalog:  NewCatalogService(d.Store),
		Support:  NewSupportService(d.Store),
		Notifier: notifier,
	}
}
