package controller

import (
	"strconv"

	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/middleware"
	"github.com/opsdesk/helpdesk/web/service"

	"github.com/gin-gonic/gin"
)

// TicketController serves the dashboard, the submit form and the per-ticket
// pages and actions.
type TicketController struct {
	BaseController
}

func NewTicketController(g *gin.RouterGroup, policy service.Policy) *TicketController {
	a := &TicketController{BaseController{policy: policy}}
	a.initRouter(g)
	return a
}

func (a *TicketController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/")
	g.Use(a.checkLogin)

	g.GET("/dashboard", a.dashboard)
	g.GET("/submit", a.submitPage)
	g.POST("/submit", a.submit)

	t := g.Group("/ticket/:id")
	t.GET("", a.view)
	t.GET("/edit", a.editPage)
	t.POST("/edit", a.edit)
	t.POST("/comment", a.comment)
	t.POST("/close", a.requireCapability(service.OpCloseTicket), a.close)
	t.POST("/delete", a.requireCapability(service.OpDeleteTicket), a.delete)
}

func (a *TicketController) tickets(c *gin.Context) *service.TicketService {
	return service.NewTicketService(middleware.DB(c), a.policy)
}

func (a *TicketController) comments(c *gin.Context) *service.CommentService {
	return service.NewCommentService(middleware.DB(c), a.policy)
}

// dashboard lists the caller's tickets, or every ticket for admins.
func (a *TicketController) dashboard(c *gin.Context) {
	status := c.Query("status")
	tickets, err := a.tickets(c).List(principal(c), status)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	if isAjax(c) {
		jsonMsgObj(c, "", tickets, nil)
		return
	}
	html(c, "dashboard.html", "pages.dashboard.title", gin.H{
		"tickets":  tickets,
		"status":   status,
		"statuses": []model.TicketStatus{model.StatusOpen, model.StatusClosed},
	})
}

func (a *TicketController) submitPage(c *gin.Context) {
	html(c, "submit.html", "pages.submit.title", gin.H{"form": entity.TicketForm{}})
}

func (a *TicketController) submit(c *gin.Context) {
	var form entity.TicketForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, service.ErrTicketFieldsRequired, "submit.html", "pages.submit.title", gin.H{"form": form})
		return
	}
	pr := principal(c)
	ticket, err := a.tickets(c).Submit(pr, form.Title, form.Description)
	if err != nil {
		fail(c, err, "submit.html", "pages.submit.title", gin.H{"form": form})
		return
	}
	middleware.Audit(c, pr, "ticket.submit", "ticket", ticket.Id, nil)
	succeed(c, "pages.submit.success", ticket, "dashboard")
}

// view shows one ticket with its comment thread.
func (a *TicketController) view(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	pr := principal(c)
	ticket, err := a.tickets(c).Get(pr, id)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	comments, err := a.comments(c).List(pr, id)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	if isAjax(c) {
		jsonMsgObj(c, "", gin.H{"ticket": ticket, "comments": comments}, nil)
		return
	}
	html(c, "ticket.html", "pages.ticket.title", gin.H{
		"ticket":   ticket,
		"comments": comments,
	})
}

func (a *TicketController) editPage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	ticket, err := a.tickets(c).Get(principal(c), id)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	html(c, "edit.html", "pages.edit.title", gin.H{
		"id":   id,
		"form": entity.TicketForm{Title: ticket.Title, Description: ticket.Description},
	})
}

func (a *TicketController) edit(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	var form entity.TicketForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, service.ErrTicketFieldsRequired, "edit.html", "pages.edit.title", gin.H{"id": id, "form": form})
		return
	}
	pr := principal(c)
	ticket, err := a.tickets(c).Edit(pr, id, form.Title, form.Description)
	if err != nil {
		fail(c, err, "edit.html", "pages.edit.title", gin.H{"id": id, "form": form})
		return
	}
	middleware.Audit(c, pr, "ticket.edit", "ticket", id, nil)
	succeed(c, "pages.edit.success", ticket, ticketPath(id))
}

func (a *TicketController) comment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	var form entity.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, service.ErrEmptyComment, "", "", nil)
		return
	}
	pr := principal(c)
	comment, err := a.comments(c).Add(pr, id, form.Content)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	middleware.Audit(c, pr, "ticket.comment", "ticket", id, map[string]any{"comment_id": comment.Id})
	succeed(c, "pages.ticket.commentAdded", comment, ticketPath(id))
}

func (a *TicketController) close(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	pr := principal(c)
	ticket, err := a.tickets(c).Close(pr, id)
	if err != nil {
		fail(c, err, "", "", nil)
		return
	}
	middleware.Audit(c, pr, "ticket.close", "ticket", id, nil)
	succeed(c, "pages.ticket.closed", ticket, "dashboard")
}

func (a *TicketController) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		fail(c, service.ErrTicketNotFound, "", "", nil)
		return
	}
	pr := principal(c)
	if err := a.tickets(c).Delete(pr, id); err != nil {
		fail(c, err, "", "", nil)
		return
	}
	middleware.Audit(c, pr, "ticket.delete", "ticket", id, nil)
	succeed(c, "pages.ticket.deleted", nil, "dashboard")
}

func ticketPath(id int) string {
	return "ticket/" + strconv.Itoa(id)
}
