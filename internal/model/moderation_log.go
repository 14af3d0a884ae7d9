package model

import (
	"gorm.io/datatypes"
)

// ModerationLog 后台操作审计流水
// 管理员每删一个板块/帖子/评论，这里记一行，后台页面倒序展示最近的记录
type ModerationLog struct {
	BaseModel
	ActorID uint   `gorm:"index;not null" json:"actor_id"`
	Action  string `gorm:"size:30;not null" json:"action"` // create_forum, delete_forum, delete_post, delete_comment

	TargetType string `gorm:"size:20;index" json:"target_type"` // forum, post, comment
	TargetID   uint   `gorm:"index" json:"target_id"`

	// 🗂 被删对象的快照 (JSON)，方便事后追查内容
	Detail datatypes.JSON `json:"detail"`
}
