package email

import (
	"marketvue_backend/internal/config"
	"marketvue_backend/internal/logger"
)

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет email сообщение
	Send(email *Email) error

	// SendTemplate рендерит шаблон и отправляет письмо
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	// Close освобождает ресурсы провайдера
	Close() error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}

// NewProvider выбирает провайдера по конфигу: gomail при email.enabled, иначе MockProvider.
func NewProvider(cfg *config.Config) (Provider, error) {
	renderer, err := NewDefaultTemplateManager()
	if err != nil {
		return nil, err
	}

	if !cfg.Email.Enabled {
		logger.Info("email disabled, notifications are logged only")
		return NewMockProvider(renderer), nil
	}

	return NewGomailProvider(ConfigFrom(cfg), renderer), nil
}
