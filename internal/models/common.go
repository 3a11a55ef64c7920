package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel - общие поля. ID генерируется в приложении, а не в БД,
// чтобы одинаково работать на postgres, mysql и in-memory хранилище.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate - gorm hook
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	b.EnsureID()
	return nil
}

// EnsureID проставляет uuid, если его еще нет.
func (b *BaseModel) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

// Touch выставляет временные метки так же, как gorm (для in-memory хранилища).
func (b *BaseModel) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
