package models

import "time"

type User struct {
	BaseModel
	Name         string     `gorm:"type:varchar(120);not null"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'USER'"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	LastLoginAt  *time.Time

	// Relations
	Posts         []Post         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsApproved - только такой пользователь может получить сессию.
func (u *User) IsApproved() bool {
	return u.Status == UserStatusApproved
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	Token     string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
