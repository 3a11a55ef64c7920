package email

import (
	"fmt"
	"sync"

	"marketvue_backend/internal/logger"
)

// MockProvider не отправляет письма, а запоминает их.
// Используется для тестов и когда email.enabled = false.
type MockProvider struct {
	renderer TemplateRenderer

	mu   sync.Mutex
	sent []Email
}

func NewMockProvider(renderer TemplateRenderer) *MockProvider {
	return &MockProvider{renderer: renderer}
}

func (m *MockProvider) Send(email *Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, *email)
	m.mu.Unlock()

	logger.Debug("email suppressed", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *MockProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	body := ""
	if m.renderer != nil {
		rendered, err := m.renderer.Render(templateName, data)
		if err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		body = rendered
	}
	return m.Send(&Email{To: to, Subject: subject, HTMLBody: body})
}

func (m *MockProvider) Close() error { return nil }

// Sent возвращает копию отправленных писем.
func (m *MockProvider) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}
