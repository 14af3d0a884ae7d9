package dto

import "time"

// CommentView 评论 + 作者展示信息
// 匿名评论没有作者，AuthorName 显示为 "匿名"
type CommentView struct {
	ID         uint
	Content    string
	AuthorName string
	CreatedAt  time.Time
}

// PostView 帖子 + 作者展示信息 (username/avatar)，渲染板块页用
type PostView struct {
	ID           uint
	Content      string
	Image        string
	AuthorName   string
	AuthorAvatar string
	CreatedAt    time.Time
	Comments     []CommentView
}
