// Package controller provides the HTTP handlers of the helpdesk: registration,
// login, the ticket pages and the admin views.
package controller

import (
	"net/http"

	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/locale"
	"github.com/opsdesk/helpdesk/web/service"
	"github.com/opsdesk/helpdesk/web/session"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// BaseController provides the login and capability checks shared by all
// controllers.
type BaseController struct {
	policy service.Policy
}

// checkLogin resolves the session principal and stores it on the request.
// Anonymous callers are sent to the login page, or get a 401 when AJAX.
func (a *BaseController) checkLogin(c *gin.Context) {
	pr := session.GetLoginUser(c)
	if pr == nil {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "errors.unauthenticated"))
		} else {
			c.Redirect(http.StatusSeeOther, c.GetString("base_path")+"login")
		}
		c.Abort()
		return
	}
	c.Set(principalKey, pr)
	c.Next()
}

// requireCapability rejects callers the policy does not allow to perform op.
// It runs after checkLogin.
func (a *BaseController) requireCapability(op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.policy.Authorize(principal(c), op); err != nil {
			fail(c, err, "", "", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// principal returns the caller resolved by checkLogin.
func principal(c *gin.Context) *entity.Principal {
	if v, ok := c.Get(principalKey); ok {
		if pr, ok := v.(*entity.Principal); ok {
			return pr
		}
	}
	return session.GetLoginUser(c)
}

// I18nWeb retrieves an internationalized message for the current request.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18n(c, name, params...)
}
