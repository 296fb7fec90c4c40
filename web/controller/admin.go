package controller

import (
	"strconv"

	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/middleware"
	"github.com/opsdesk/helpdesk/web/service"

	"github.com/gin-gonic/gin"
)

const (
	auditPageSize  = 50
	defaultLogView = 100
	maxLogView     = 1000
)

// AdminController serves the admin-only views: the user directory, a user's
// tickets, the audit trail and the recent server log.
type AdminController struct {
	BaseController
}

func NewAdminController(g *gin.RouterGroup, policy service.Policy) *AdminController {
	a := &AdminController{BaseController{policy: policy}}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/")
	g.Use(a.checkLogin)

	g.GET("/admin/users", a.requireCapability(service.OpListUsers), a.users)
	g.GET("/admin/audit", a.requireCapability(service.OpViewAudit), a.audit)
	g.GET("/admin/logs", a.requireCapability(service.OpViewLogs), a.logs)
	g.GET("/users/:id/tickets", a.requireCapability(service.OpViewUserTickets), a.userTickets)
}

func (a *AdminController) users(c *gin.Context) {
	users, err := service.NewUserService(middleware.DB(c), a.policy).ListUsers(principal(c))
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	if isAjax(c) {
		jsonMsgObj(c, "", users, nil)
		return
	}
	html(c, "users.html", "pages.users.title", gin.H{"users": users})
}

func (a *AdminController) userTickets(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrUserNotFound, "", "", nil)
		return
	}
	owner, tickets, err := service.NewTicketService(middleware.DB(c), a.policy).ListForUser(principal(c), id)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	if isAjax(c) {
		jsonMsgObj(c, "", gin.H{"user": owner, "tickets": tickets}, nil)
		return
	}
	html(c, "user_tickets.html", "pages.userTickets.title", gin.H{
		"owner":   owner,
		"tickets": tickets,
	})
}

// audit shows one page of the trail, optionally narrowed to one action.
func (a *AdminController) audit(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	action := c.Query("action")

	logs, total, err := service.NewAuditLogService(middleware.DB(c), a.policy).
		GetAuditLogs(principal(c), action, auditPageSize, (page-1)*auditPageSize)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	if isAjax(c) {
		jsonMsgObj(c, "", gin.H{"logs": logs, "total": total}, nil)
		return
	}
	html(c, "audit.html", "pages.audit.title", gin.H{
		"logs":    logs,
		"total":   total,
		"action":  action,
		"page":    page,
		"hasPrev": page > 1,
		"hasNext": int64(page*auditPageSize) < total,
	})
}

// logs shows the newest buffered server log lines at or above level.
func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(defaultLogView)))
	if err != nil || count < 1 {
		count = defaultLogView
	}
	count = min(count, maxLogView)
	level := c.DefaultQuery("level", "INFO")

	lines := logger.GetLogs(count, level)
	if isAjax(c) {
		jsonMsgObj(c, "", lines, nil)
		return
	}
	html(c, "logs.html", "pages.logs.title", gin.H{
		"lines":  lines,
		"count":  count,
		"level":  level,
		"levels": []string{"DEBUG", "INFO", "NOTICE", "WARNING", "ERROR"},
	})
}
