package models

import "gorm.io/datatypes"

const (
	EntityUser = "user"
	EntityPost = "post"
)

// ModerationEvent - запись аудита на каждое реальное изменение статуса администратором.
type ModerationEvent struct {
	BaseModel
	ActorID    string         `gorm:"type:varchar(36);not null;index"`
	Entity     string         `gorm:"type:varchar(20);not null;index:idx_event_entity"`
	EntityID   string         `gorm:"type:varchar(36);not null;index:idx_event_entity"`
	FromStatus string         `gorm:"type:varchar(20)"`
	ToStatus   string         `gorm:"type:varchar(20);not null"`
	Changes    datatypes.JSON `gorm:"type:json"`
}
