// Package job holds the periodic tasks scheduled by the web server.
package job

import (
	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/util/common"
	"github.com/opsdesk/helpdesk/web/service"

	"gorm.io/gorm"
)

const defaultRetentionDays = 90

// AuditCleanupJob cleans up old audit logs
type AuditCleanupJob struct {
	db            *gorm.DB
	retentionDays int
}

// NewAuditCleanupJob creates a job removing entries older than
// retentionDays. A nil db uses the shared connection.
func NewAuditCleanupJob(db *gorm.DB, retentionDays int) *AuditCleanupJob {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &AuditCleanupJob{db: db, retentionDays: retentionDays}
}

// Run cleans up old audit logs
func (j *AuditCleanupJob) Run() {
	defer common.Recover("audit cleanup job")
	logger.Debug("Audit cleanup job started")

	db := j.db
	if db == nil {
		db = database.GetDB()
	}
	n, err := service.NewAuditLogService(db, service.Policy{}).CleanOldLogs(j.retentionDays)
	if err != nil {
		logger.Warning("Failed to clean old audit logs:", err)
		return
	}
	logger.Debugf("Audit cleanup removed %d entries (retention: %d days)", n, j.retentionDays)
}
