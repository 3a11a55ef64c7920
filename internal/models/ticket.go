package models

type SupportTicket struct {
	BaseModel
	UserID  string       `gorm:"type:varchar(36);not null;index"`
	Subject string       `gorm:"type:varchar(200);not null"`
	Body    string       `gorm:"type:text;not null"`
	Status  TicketStatus `gorm:"type:varchar(10);not null;default:'OPEN';index"`
}
