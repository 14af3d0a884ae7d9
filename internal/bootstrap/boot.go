package bootstrap

import (
	"log"

	"worsebox/internal/conf"
	"worsebox/internal/data"
	"worsebox/internal/handler"
	"worsebox/internal/repository"
	"worsebox/internal/service"
)

// Run 启动服务器
func Run() {
	// 1. 加载配置
	cfg := conf.LoadConfig()

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		log.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	userRepo := repository.NewUserRepository(d.DB)

	// 3. 初始化服务层
	sessions := service.NewSessionStore(d, cfg.App.SessionTTL)
	blobs := service.NewBlobStore(d)
	authSvc := service.NewAuthService(userRepo)
	forumSvc := service.NewForumService(d)
	modlogSvc := service.NewModLogService(d)
	access := service.NewAccessService(sessions, userRepo)

	// 4. 管理员种子 (幂等，凭证来自环境变量)
	if err := authSvc.SeedAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("❌ 管理员种子失败: %v", err)
	}

	// 5. 初始化 Handler
	h := Handlers{
		Auth:  handler.NewAuthHandler(authSvc, sessions, blobs, int(cfg.App.SessionTTL.Seconds())),
		Forum: handler.NewForumHandler(forumSvc, blobs),
		Admin: handler.NewAdminHandler(forumSvc, modlogSvc),
		File:  handler.NewFileHandler(blobs),
	}

	// 6. 组装路由并启动
	r := NewRouter(h, access, "web/templates/*.tmpl")

	log.Printf("🚀 worsebox 已启动，监听端口 :%s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("❌ Server 启动失败: %v", err)
	}
}
