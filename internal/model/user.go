package model

type User struct {
	BaseModel
	Username     string `gorm:"size:50;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// 头像公共路径，没上传就用默认图
	Avatar string `gorm:"size:255;default:'/default.png'" json:"avatar"`

	// 🔥 管理员标记：所有后台操作的唯一权限依据
	// 只有启动时的种子流程会写 true，公开接口永远不碰这个字段
	IsAdmin bool `gorm:"default:false" json:"is_admin"`
}
