package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/service"
	"github.com/opsdesk/helpdesk/web/session"

	"github.com/gin-gonic/gin"
)

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonMsgObj sends a JSON response with a message, object, and error status.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		m.Msg = msg
		c.JSON(http.StatusOK, m)
		return
	}
	m.Msg = errorMessage(c, err)
	c.JSON(service.KindOf(err).HTTPStatus(), m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// html renders an HTML template with the provided data and title.
func html(c *gin.Context, name string, title string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, title, data)
}

func htmlStatus(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = I18nWeb(c, title)
	data["request_uri"] = c.Request.RequestURI
	data["base_path"] = c.GetString("base_path")
	data["user"] = session.GetLoginUser(c)
	data["flashes"] = session.Flashes(c)
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"cur_ver": config.GetVersion(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// errorMessage localizes a service error. Unclassified errors are never
// shown to the user.
func errorMessage(c *gin.Context, err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		key := "errors." + se.Code
		if msg := I18nWeb(c, key); msg != key {
			return msg
		}
		return se.Msg
	}
	return I18nWeb(c, "errors.internal")
}

// fail answers a failed request. AJAX callers get a JSON Msg with the status
// of the error kind. Others are sent to login when unauthenticated, or get
// the named form re-rendered with the error (the error page when name is
// empty).
func fail(c *gin.Context, err error, name, title string, data gin.H) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debugf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	if isAjax(c) {
		jsonMsg(c, "", err)
		return
	}
	if errors.Is(err, service.ErrUnauthenticated) {
		c.Redirect(http.StatusSeeOther, c.GetString("base_path")+"login")
		return
	}
	if name == "" {
		name, title = "error.html", "pages.error.title"
	}
	if data == nil {
		data = gin.H{}
	}
	data["error"] = errorMessage(c, err)
	htmlStatus(c, kind.HTTPStatus(), name, title, data)
}

// succeed answers a successful POST: a JSON Msg for AJAX callers, otherwise a
// flash message and a redirect to target (relative to the base path).
func succeed(c *gin.Context, msgKey string, obj any, target string) {
	msg := I18nWeb(c, msgKey)
	if isAjax(c) {
		jsonMsgObj(c, msg, obj, nil)
		return
	}
	if err := session.AddFlash(c, "success", msg); err != nil {
		logger.Warning("Unable to save flash message:", err)
	}
	c.Redirect(http.StatusSeeOther, c.GetString("base_path")+target)
}

// paramID reads the :id path parameter. Anything but a positive integer
// names no record.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}
