package service

import (
	"context"
	"errors"
	"time"

	"worsebox/internal/data"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore 把不透明 Token 映射到用户 ID
// 服务端记录带 TTL，过期自动失效；Token 本身只是个随机串，不携带任何信息
type SessionStore interface {
	// Start 创建一条会话记录，返回新 Token
	Start(ctx context.Context, userID uint) (string, error)
	// Resolve 查 Token 对应的用户 ID，查不到/已过期返回 error
	Resolve(ctx context.Context, token string) (uint, error)
	// End 销毁会话 (登出)
	End(ctx context.Context, token string) error
}

var ErrSessionNotFound = errors.New("会话不存在或已过期")

type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(d *data.Data, ttl time.Duration) SessionStore {
	return &redisSessionStore{rdb: d.Redis, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (s *redisSessionStore) Start(ctx context.Context, userID uint) (string, error) {
	token := uuid.New().String()
	// SET session:<token> <userID> EX <ttl>
	// TTL 自创建起固定，不做滑动续期
	if err := s.rdb.Set(ctx, sessionKey(token), uint64(userID), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *redisSessionStore) Resolve(ctx context.Context, token string) (uint, error) {
	id, err := s.rdb.Get(ctx, sessionKey(token)).Uint64()
	if err == redis.Nil {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *redisSessionStore) End(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}
