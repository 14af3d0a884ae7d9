package service

import (
	"context"
	"strconv"
	"sync"
)

// memSessions 测试用的内存版 SessionStore，不依赖 Redis
type memSessions struct {
	mu   sync.Mutex
	next int
	m    map[string]uint
}

func newMemSessions() *memSessions {
	return &memSessions{m: make(map[string]uint)}
}

func (s *memSessions) Start(_ context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := "tok-" + strconv.Itoa(s.next)
	s.m[token] = userID
	return token, nil
}

func (s *memSessions) Resolve(_ context.Context, token string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.m[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	return id, nil
}

func (s *memSessions) End(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
