package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	ProfileHandler *ProfileHandler
	UserHandler    *UserHandler
	AdminHandler   *AdminHandler
	PostHandler    *PostHandler
	ReviewHandler  *ReviewHandler
	CatalogHandler *CatalogHandler
	SupportHandler *SupportHandler
	HealthHandler  *HealthHandler
}
