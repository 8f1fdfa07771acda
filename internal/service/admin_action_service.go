package service

import (
	"fmt"

	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"
)

// AdminActionService 管理操作审计查询
type AdminActionService struct {
	repo repository.AdminActionLogRepository
}

// NewAdminActionService 创建审计服务
func NewAdminActionService(repo repository.AdminActionLogRepository) *AdminActionService {
	return &AdminActionService{repo: repo}
}

// List 审计列表
func (s *AdminActionService) List(filter repository.AdminActionLogFilter) ([]models.AdminActionLog, int64, error) {
	return s.repo.List(filter)
}

// Record 写入审计（事务外）
func (s *AdminActionService) Record(adminID uint, action, targetType string, targetID interface{}, detail models.JSON) error {
	return recordAdminAction(s.repo, adminID, action, targetType, targetID, detail)
}

// recordAdminAction 写入审计；传入事务仓库时与业务写入同事务落库
func recordAdminAction(repo repository.AdminActionLogRepository, adminID uint, action, targetType string, targetID interface{}, detail models.JSON) error {
	if repo == nil {
		return nil
	}
	if detail == nil {
		detail = models.JSON{}
	}
	return repo.Create(&models.AdminActionLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   fmt.Sprint(targetID),
		DetailJSON: detail,
	})
}
