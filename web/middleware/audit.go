package middleware

import (
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/service"

	"github.com/gin-gonic/gin"
)

const auditKey = "audit"

// Audit marks the current request for the audit trail. The record is
// written by AuditMiddleware once the handler has returned.
func Audit(c *gin.Context, pr *entity.Principal, action, resource string, resourceID int, details map[string]any) {
	c.Set(auditKey, service.AuditEntry{
		Principal:  pr,
		Action:     action,
		Resource:   resource,
		ResourceId: resourceID,
		Details:    details,
	})
}

// AuditMiddleware stores the entry recorded by Audit, if any, with the
// request id, client IP and user agent. Failures are logged, never returned.
func AuditMiddleware(policy service.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		v, ok := c.Get(auditKey)
		if !ok {
			return
		}
		entry, ok := v.(service.AuditEntry)
		if !ok {
			return
		}
		entry.RequestId = GetRequestID(c)
		entry.IP = c.ClientIP()
		entry.UserAgent = c.GetHeader("User-Agent")

		if err := service.NewAuditLogService(DB(c), policy).LogAction(entry); err != nil {
			logger.Warning("Failed to log audit action:", err)
		}
	}
}
