package models

type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug string `gorm:"type:varchar(120);uniqueIndex;not null"`
}
