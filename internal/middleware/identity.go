package middleware

import (
	"net/http"

	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie 客户端 Cookie 名
const SessionCookie = "session_id"

// IdentityKey Identity 在 gin Context 里的 Key
const IdentityKey = "identity"

// Identity 每个请求进来先把 Cookie 解析成身份，挂到 Context 上
// 没登录/会话过期都得到零值身份，请求照常往下走
func Identity(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)
		id := access.Identify(c.Request.Context(), token)
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// CurrentIdentity 从 gin Context 取出身份
func CurrentIdentity(c *gin.Context) service.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(service.Identity); ok {
			return id
		}
	}
	return service.Identity{}
}

// RequireLogin 需要登录的路由：没登录 302 去 /login
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if service.Decide(CurrentIdentity(c), service.NeedLogin) == service.Deny {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 后台路由：非管理员静默 302 回首页
// 故意不给 403，不暴露这条路由是后台入口 (沿用线上行为)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if service.Decide(CurrentIdentity(c), service.NeedAdmin) == service.Deny {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
