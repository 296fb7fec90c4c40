package controller

import (
	"net/http"

	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/middleware"
	"github.com/opsdesk/helpdesk/web/service"
	"github.com/opsdesk/helpdesk/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles registration, login and logout.
type IndexController struct {
	BaseController
}

// NewIndexController creates a new IndexController and initializes its
// routes. limiter guards the credential POSTs.
func NewIndexController(g *gin.RouterGroup, policy service.Policy, limiter gin.HandlerFunc) *IndexController {
	a := &IndexController{BaseController{policy: policy}}
	a.initRouter(g, limiter)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup, limiter gin.HandlerFunc) {
	g.GET("/", a.index)
	g.GET("/register", a.registerPage)
	g.POST("/register", limiter, a.register)
	g.GET("/login", a.loginPage)
	g.POST("/login", limiter, a.login)
	g.GET("/logout", a.logout)
}

// index sends logged-in users to the dashboard and shows the login page
// otherwise.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusSeeOther, c.GetString("base_path")+"dashboard")
		return
	}
	html(c, "login.html", "pages.login.title", gin.H{"email": ""})
}

func (a *IndexController) registerPage(c *gin.Context) {
	html(c, "register.html", "pages.register.title", gin.H{"form": entity.RegisterForm{}})
}

func (a *IndexController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, service.ErrMissingField, "register.html", "pages.register.title", gin.H{"form": form})
		return
	}

	users := service.NewUserService(middleware.DB(c), a.policy)
	user, err := users.Register(&form)
	if err != nil {
		form.Password, form.ConfirmPassword = "", ""
		fail(c, err, "register.html", "pages.register.title", gin.H{"form": form})
		return
	}

	logger.Infof("%s registered as %s, IP: %s", user.Email, user.Role, c.ClientIP())
	middleware.Audit(c, entity.NewPrincipal(user), "user.register", "user", user.Id, nil)
	succeed(c, "pages.register.success", nil, "login")
}

func (a *IndexController) loginPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusSeeOther, c.GetString("base_path")+"dashboard")
		return
	}
	html(c, "login.html", "pages.login.title", gin.H{"email": ""})
}

// login verifies the credentials and stores the principal in the session.
func (a *IndexController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil || form.Email == "" || form.Password == "" {
		fail(c, service.ErrInvalidCredentials, "login.html", "pages.login.title", gin.H{"email": form.Email})
		return
	}

	users := service.NewUserService(middleware.DB(c), a.policy)
	user, err := users.CheckUser(form.Email, form.Password)
	if err != nil {
		logger.Warningf("failed login for %q, IP: %s", form.Email, c.ClientIP())
		middleware.Audit(c, nil, "auth.login_failed", "user", 0, map[string]any{"email": form.Email})
		fail(c, err, "login.html", "pages.login.title", gin.H{"email": form.Email})
		return
	}

	pr := entity.NewPrincipal(user)
	if err := session.SetLoginUser(c, pr); err != nil {
		logger.Warning("Unable to save session:", err)
		fail(c, err, "login.html", "pages.login.title", gin.H{"email": pr.Email})
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", user.Email, c.ClientIP())
	middleware.Audit(c, pr, "auth.login", "user", user.Id, nil)
	succeed(c, "pages.login.success", pr, "dashboard")
}

// logout clears the session and returns to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if pr := session.GetLoginUser(c); pr != nil {
		logger.Infof("%s logged out successfully", pr.Email)
		middleware.Audit(c, pr, "auth.logout", "user", pr.UserId, nil)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.Redirect(http.StatusSeeOther, c.GetString("base_path")+"login")
}
