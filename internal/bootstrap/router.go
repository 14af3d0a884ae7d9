package bootstrap

import (
	"time"

	"worsebox/internal/handler"
	"worsebox/internal/middleware"
	"worsebox/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部控制器
type Handlers struct {
	Auth  *handler.AuthHandler
	Forum *handler.ForumHandler
	Admin *handler.AdminHandler
	File  *handler.FileHandler
}

// NewRouter 组装 gin 路由
// templateGlob 单独传进来，测试里可以指到别的相对路径
func NewRouter(h Handlers, access *service.AccessService, templateGlob string) *gin.Engine {
	r := gin.Default()

	r.LoadHTMLGlob(templateGlob)

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.TraceMiddleware())

	// 每个请求先解析身份 ({nil,false} 也放行)
	r.Use(middleware.Identity(access))

	// 公开页面
	r.GET("/", h.Forum.Home)
	r.GET("/register", h.Auth.ShowRegister)
	r.POST("/register", h.Auth.Register)
	r.GET("/login", h.Auth.ShowLogin)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)
	r.GET("/forum/:id", h.Forum.ShowForum)

	// 发帖要登录，没登录 302 去 /login
	r.POST("/forum/:id", middleware.RequireLogin(), h.Forum.CreatePost)

	// 评论不要求登录 (匿名评论是线上行为，保留)
	r.POST("/post/:id/comment", h.Forum.CreateComment)

	// 后台：非管理员静默 302 回首页
	admin := r.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("", h.Admin.Panel)
		admin.POST("/forum", h.Admin.CreateForum)
		admin.POST("/forum/:id/delete", h.Admin.DeleteForum)
		admin.POST("/post/:id/delete", h.Admin.DeletePost)
		admin.POST("/comment/:id/delete", h.Admin.DeleteComment)
	}

	// 上传文件回源 + 静态资源
	r.GET("/uploads/:filename", h.File.Serve)
	r.Static("/static", "web/static")
	r.StaticFile("/default.png", "web/static/default.png")

	return r
}
