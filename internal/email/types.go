package email

// Email представляет структуру email сообщения
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

// Имена встроенных шаблонов
const (
	TemplateAccountApproved = "account_approved"
	TemplateAccountDenied   = "account_denied"
	TemplateAccountBlocked  = "account_blocked"
	TemplatePostStatus      = "post_status"
)
