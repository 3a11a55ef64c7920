package services

import (
	"context"
	"sync"

	"marketvue_backend/internal/email"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/models"
)

// Notifier отправляет письма о решениях модерации в фоне.
// Ошибки отправки только логируются: на результат запроса они не влияют.
type Notifier struct {
	provider email.Provider
	wg       sync.WaitGroup
}

func NewNotifier(provider email.Provider) *Notifier {
	return &Notifier{provider: provider}
}

var userStatusTemplates = map[models.UserStatus]struct {
	template string
	subject  string
}{
	models.UserStatusApproved: {email.TemplateAccountApproved, "Your MarketVUE account was approved"},
	models.UserStatusDenied:   {email.TemplateAccountDenied, "Your MarketVUE registration"},
	models.UserStatusBlocked:  {email.TemplateAccountBlocked, "Your MarketVUE account was blocked"},
}

// UserStatusChanged - письмо пользователю о новом статусе (PENDING не уведомляется).
func (n *Notifier) UserStatusChanged(ctx context.Context, user *models.User) {
	tpl, ok := userStatusTemplates[user.Status]
	if !ok {
		return
	}
	n.send(ctx, []string{user.Email}, tpl.subject, tpl.template, email.TemplateData{"Name": user.Name})
}

// PostStatusChanged - письмо владельцу поста.
func (n *Notifier) PostStatusChanged(ctx context.Context, view *models.PostView) {
	if view.SellerEmail == "" {
		return
	}
	n.send(ctx, []string{view.SellerEmail}, "Your listing status changed", email.TemplatePostStatus, email.TemplateData{
		"Name":   view.SellerName,
		"Title":  view.Title,
		"Status": string(view.ReviewStatus),
	})
}

func (n *Notifier) send(ctx context.Context, to []string, subject, template string, data email.TemplateData) {
	if n == nil || n.provider == nil {
		return
	}
	log := logger.FromContext(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.provider.SendTemplate(to, subject, template, data); err != nil {
			log.Warn("notification email failed", "template", template, "error", err.Error())
			return
		}
		log.Debug("notification email sent", "template", template)
	}()
}

// Wait ждет отправки всех писем (graceful shutdown и тесты).
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
