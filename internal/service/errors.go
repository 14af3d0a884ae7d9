package service

import "errors"

// 业务错误哨兵，Handler 根据类型决定响应策略 (重定向 or 表单报错)
var (
	ErrForumNotFound      = errors.New("板块不存在")
	ErrPostNotFound       = errors.New("帖子不存在")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrFileType           = errors.New("不支持的文件类型")
)
