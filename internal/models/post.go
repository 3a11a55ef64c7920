package models

type Post struct {
	BaseModel
	UserID       string     `gorm:"type:varchar(36);not null;index"`
	CategoryID   *string    `gorm:"type:varchar(36);index"`
	Title        string     `gorm:"type:varchar(200);not null"`
	Description  string     `gorm:"type:text"`
	Price        float64    `gorm:"not null;default:0;check:price >= 0"`
	Currency     string     `gorm:"type:varchar(3);not null;default:'CLP'"`
	ReviewStatus PostStatus `gorm:"type:varchar(20);not null;default:'PENDING_REVIEW';index"`
	IsActive     bool       `gorm:"not null;default:true"`

	// Relations
	User     *User       `gorm:"foreignKey:UserID"`
	Category *Category   `gorm:"foreignKey:CategoryID"`
	Images   []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Reviews  []Review    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Listable - пост виден в публичной ленте.
func (p *Post) Listable() bool {
	return p.ReviewStatus == PostStatusPublished && p.IsActive
}

type PostImage struct {
	BaseModel
	PostID       string `gorm:"type:varchar(36);not null;index"`
	Path         string `gorm:"not null"` // ключ в хранилище
	URL          string `gorm:"not null"`
	ThumbnailKey string
	ThumbnailURL string
	Position     int  `gorm:"not null;default:0"`
	IsCover      bool `gorm:"not null;default:false"`
}

// PostView - проекция поста с полями из соседних таблиц.
// Ее отдают все операции, меняющие пост.
type PostView struct {
	Post
	SellerName    string
	SellerEmail   string
	CategoryName  string
	CoverURL      string
	AverageRating float64
	ReviewCount   int64
}
