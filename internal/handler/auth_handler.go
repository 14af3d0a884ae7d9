package handler

import (
	"errors"
	"net/http"

	"worsebox/internal/dto"
	"worsebox/internal/middleware"
	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc      service.AuthService // 依赖接口，而不是具体的结构体
	sessions service.SessionStore
	blobs    service.BlobStore
	ttlSecs  int
}

func NewAuthHandler(svc service.AuthService, sessions service.SessionStore, blobs service.BlobStore, ttlSecs int) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, blobs: blobs, ttlSecs: ttlSecs}
}

// ShowRegister 注册页
// GET /register
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", gin.H{"Identity": middleware.CurrentIdentity(c)})
}

// Register 提交注册
// POST /register (multipart: username, email, password, 可选 pfp 文件)
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		// 缺字段不崩进程，把表单连同提示一起吐回去
		h.registerError(c, "用户名、邮箱、密码都是必填的")
		return
	}

	// 可选头像，没传就留空让 Service 填默认图
	avatar := ""
	if fh, err := c.FormFile("pfp"); err == nil && fh != nil {
		path, err := h.blobs.Save(c.Request.Context(), fh)
		if err != nil {
			if errors.Is(err, service.ErrFileType) {
				h.registerError(c, "头像只支持图片文件")
				return
			}
			h.registerError(c, "头像上传失败，请稍后再试")
			return
		}
		avatar = path
	}

	if _, err := h.svc.Register(req, avatar); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			h.registerError(c, "该邮箱已被注册")
			return
		}
		h.registerError(c, "注册失败，请稍后再试")
		return
	}

	// 注册成功只跳登录页，不自动登录
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) registerError(c *gin.Context, msg string) {
	c.HTML(http.StatusBadRequest, "register.tmpl", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Error":    msg,
	})
}

// ShowLogin 登录页
// GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Identity": middleware.CurrentIdentity(c)})
}

// Login 提交登录
// POST /login (form: email, password)
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.tmpl", gin.H{
			"Identity": middleware.CurrentIdentity(c),
			"Error":    "邮箱和密码都是必填的",
		})
		return
	}

	user, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		// 邮箱不存在/密码错误一视同仁：302 回登录页，不留任何区别
		c.Redirect(http.StatusFound, "/login")
		return
	}

	token, err := h.sessions.Start(c.Request.Context(), user.ID)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.SetCookie(middleware.SessionCookie, token, h.ttlSecs, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout 登出：销毁服务端会话 + 清 Cookie
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		_ = h.sessions.End(c.Request.Context(), token)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
