package service

import (
	"log"

	"worsebox/internal/dto"
	"worsebox/internal/model"
	"worsebox/internal/repository"
	"worsebox/internal/utils"
)

type AuthService interface {
	Register(req dto.RegisterReq, avatar string) (uint, error)
	Login(email, password string) (*model.User, error)
	SeedAdmin(email, password string) error
}

type authService struct {
	repo repository.UserRepository
}

func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo}
}

// Register 注册业务逻辑
// avatar 是上传服务给的公共路径，没传头像时为 ""
func (s *authService) Register(req dto.RegisterReq, avatar string) (uint, error) {
	// 1. 业务检查：邮箱是否已注册
	if s.repo.IsEmailExist(req.Email) {
		return 0, ErrEmailTaken
	}

	// 2. 密码加密 (明文不落库、不打日志)
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	// 3. 组装 Model
	if avatar == "" {
		avatar = "/default.png"
	}
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Avatar:       avatar,
		// IsAdmin 永远 false，只有种子流程能写 true
	}

	// 4. 落库
	if err := s.repo.Create(user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// Login 登录业务逻辑
// 邮箱不存在和密码错误返回同一个错误，不给撞库的人任何提示
func (s *authService) Login(email, password string) (*model.User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// SeedAdmin 启动时幂等创建管理员账号
// 凭证来自环境变量 (见 conf)，没配就什么都不做
func (s *authService) SeedAdmin(email, password string) error {
	if email == "" || password == "" {
		log.Println("⚠️ 未配置 ADMIN_EMAIL / ADMIN_PASSWORD，跳过管理员种子")
		return nil
	}

	if s.repo.IsEmailExist(email) {
		log.Println("✅ 管理员账号已存在")
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     "Admin",
		Email:        email,
		PasswordHash: hash,
		Avatar:       "/default.png",
		IsAdmin:      true,
	}
	if err := s.repo.Create(admin); err != nil {
		return err
	}

	log.Println("🎉 管理员账号创建成功")
	return nil
}
