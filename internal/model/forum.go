package model

type Forum struct {
	BaseModel
	Title string `gorm:"size:100;not null" json:"title"`

	// 🔗 关联帖子 (一对多)
	Posts []Post `gorm:"foreignKey:ForumID" json:"posts"`
}

type Post struct {
	BaseModel
	ForumID  uint   `gorm:"index;not null" json:"forum_id"`
	AuthorID uint   `gorm:"index;not null" json:"author_id"`
	Content  string `gorm:"not null" json:"content"`

	// 可选配图，"" 表示没有
	Image string `gorm:"size:255" json:"image"`
}

type Comment struct {
	BaseModel
	PostID uint `gorm:"index;not null" json:"post_id"`

	// AuthorID 允许为 NULL：匿名评论不带会话也能发 (沿用线上行为)
	AuthorID *uint  `gorm:"index" json:"author_id"`
	Content  string `gorm:"not null" json:"content"`
}
