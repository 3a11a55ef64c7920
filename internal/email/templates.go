package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateManager реализует TemplateRenderer для управления шаблонами email
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает пустой менеджер шаблонов
func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

var defaultTemplates = map[string]string{
	TemplateAccountApproved: `<p>Hola {{.Name}},</p>
<p>Your MarketVUE account has been approved. You can now sign in and publish listings.</p>`,
	TemplateAccountDenied: `<p>Hola {{.Name}},</p>
<p>Your MarketVUE registration was not approved.</p>`,
	TemplateAccountBlocked: `<p>Hola {{.Name}},</p>
<p>Your MarketVUE account has been blocked by an administrator.</p>`,
	TemplatePostStatus: `<p>Hola {{.Name}},</p>
<p>Your listing "{{.Title}}" is now {{.Status}}.</p>`,
}

// NewDefaultTemplateManager - менеджер со встроенными шаблонами уведомлений
func NewDefaultTemplateManager() (*TemplateManager, error) {
	tm := NewTemplateManager()
	for name, body := range defaultTemplates {
		if err := tm.AddTemplate(name, body); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}
