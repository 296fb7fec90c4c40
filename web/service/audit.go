package service

import (
	"fmt"
	"time"

	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// AuditEntry describes one recorded action.
type AuditEntry struct {
	Principal  *entity.Principal
	Action     string
	Resource   string
	ResourceId int
	RequestId  string
	IP         string
	UserAgent  string
	Details    map[string]any
}

// AuditLogService records and queries the audit trail.
type AuditLogService struct {
	DB     *gorm.DB
	Policy Policy
}

func NewAuditLogService(db *gorm.DB, policy Policy) *AuditLogService {
	return &AuditLogService{DB: db, Policy: policy}
}

// LogAction stores e. Anonymous actions (failed logins, registrations) are
// recorded with user id 0.
func (s *AuditLogService) LogAction(e AuditEntry) error {
	detailsJSON := ""
	if e.Details != nil {
		data, err := json.Marshal(e.Details)
		if err != nil {
			logger.Warning("Failed to marshal audit log details:", err)
		} else {
			detailsJSON = string(data)
		}
	}

	entry := model.AuditLog{
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceId: e.ResourceId,
		RequestId:  e.RequestId,
		IP:         e.IP,
		UserAgent:  e.UserAgent,
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}
	if e.Principal != nil {
		entry.UserId = e.Principal.UserId
		entry.Email = e.Principal.Email
	}

	if err := s.DB.Create(&entry).Error; err != nil {
		logger.Warningf("Failed to create audit log: user=%d, action=%s, resource=%s, error=%v", entry.UserId, e.Action, e.Resource, err)
		return err
	}
	return nil
}

// GetAuditLogs returns a page of the trail, newest first, and the total count.
// Admin only.
func (s *AuditLogService) GetAuditLogs(pr *entity.Principal, action string, limit, offset int) ([]model.AuditLog, int64, error) {
	if err := s.Policy.Authorize(pr, OpViewAudit); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := s.DB.Model(&model.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]model.AuditLog, 0)
	if err := query.Order("timestamp DESC, id DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CleanOldLogs removes entries older than days.
func (s *AuditLogService) CleanOldLogs(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be greater than 0")
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	res := s.DB.Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if res.Error != nil {
		return 0, res.Error
	}
	logger.Infof("Cleaned %d old audit logs (older than %d days)", res.RowsAffected, days)
	return res.RowsAffected, nil
}
