package service

import (
	"context"
	"encoding/json"
	"log"

	"worsebox/internal/data"
	"worsebox/internal/model"

	"gorm.io/datatypes"
)

// ModLogService 后台操作审计流水
type ModLogService struct {
	Data *data.Data
}

func NewModLogService(d *data.Data) *ModLogService {
	return &ModLogService{Data: d}
}

// Record 记一条审计流水，detail 是被操作对象的快照
// 记录失败只打日志不报错：审计挂了不能连累删除操作本身
func (s *ModLogService) Record(ctx context.Context, actorID uint, action, targetType string, targetID uint, detail any) {
	var payload datatypes.JSON
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			payload = datatypes.JSON(b)
		}
	}

	entry := &model.ModerationLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     payload,
	}
	if err := s.Data.DB.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("⚠️ 审计流水写入失败: %v", err)
	}
}

// ListRecent 最近的审计记录，后台页面展示用
func (s *ModLogService) ListRecent(ctx context.Context, limit int) ([]model.ModerationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.ModerationLog
	if err := s.Data.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
