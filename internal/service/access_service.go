package service

import (
	"context"

	"worsebox/internal/model"
	"worsebox/internal/repository"
)

// Identity 每个请求派生一次的身份信息
// 没登录就是零值 {nil, false}，请求本身不会因此失败
type Identity struct {
	User    *model.User
	IsAdmin bool
}

// Decision 纯鉴权结论，和 HTTP 响应策略 (重定向/403) 解耦
// 响应策略在 middleware 层决定，这里只回答"允许与否"
type Decision int

const (
	Allow Decision = iota
	Deny
)

// Need 操作需要的权限等级
type Need int

const (
	NeedNone  Need = iota // 公开
	NeedLogin             // 需要任意登录用户
	NeedAdmin             // 需要管理员
)

type AccessService struct {
	sessions SessionStore
	users    repository.UserRepository
}

func NewAccessService(sessions SessionStore, users repository.UserRepository) *AccessService {
	return &AccessService{sessions: sessions, users: users}
}

// Identify 把 Cookie 里的 Token 解析成 Identity
// 每次请求都重新查用户，保证拿到的是最新的 IsAdmin 状态
func (s *AccessService) Identify(ctx context.Context, token string) Identity {
	if token == "" {
		return Identity{}
	}

	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return Identity{}
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		// 会话还在但用户没了 (被清理?)，当成未登录处理
		return Identity{}
	}

	return Identity{User: user, IsAdmin: user.IsAdmin}
}

// Decide 纯函数：给定身份和需求，返回 Allow/Deny
func Decide(id Identity, need Need) Decision {
	switch need {
	case NeedAdmin:
		if id.IsAdmin {
			return Allow
		}
		return Deny
	case NeedLogin:
		if id.User != nil {
			return Allow
		}
		return Deny
	default:
		return Allow
	}
}
