package models

// All - порядок важен для AutoMigrate (сначала родительские таблицы).
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Post{},
		&PostImage{},
		&Review{},
		&RefreshToken{},
		&ModerationEvent{},
		&SupportTicket{},
	}
}
