package models

type Review struct {
	BaseModel
	PostID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_post_user"`
	UserID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_post_user;index"`
	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string `gorm:"type:text"`

	// Relations
	User *User `gorm:"foreignKey:UserID"`
}

// ReviewStats - агрегаты отзывов по посту (не хранятся).
type ReviewStats struct {
	AverageRating float64
	ReviewCount   int64
	Breakdown     map[int]int64
}
