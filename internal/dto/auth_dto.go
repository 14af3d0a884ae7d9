package dto

// 注册/登录都是 HTML 表单提交，用 form tag 绑定
type RegisterReq struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginReq struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}
