// Package web provides the helpdesk web server: routing, sessions, templates,
// static assets and the scheduled audit retention job.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/opsdesk/helpdesk/caching"
	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/util/common"
	"github.com/opsdesk/helpdesk/util/random"
	"github.com/opsdesk/helpdesk/web/controller"
	"github.com/opsdesk/helpdesk/web/job"
	"github.com/opsdesk/helpdesk/web/locale"
	"github.com/opsdesk/helpdesk/web/middleware"
	"github.com/opsdesk/helpdesk/web/service"
	"github.com/opsdesk/helpdesk/web/session"

	"github.com/dustin/go-humanize"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the helpdesk web server with its router, throttling store and
// scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	settings *config.Settings
	policy   service.Policy
	limits   *caching.Cache

	index  *controller.IndexController
	ticket *controller.TicketController
	admin  *controller.AdminController

	cron *cron.Cron
}

// NewServer creates a server for settings.
func NewServer(settings *config.Settings) *Server {
	return &Server{
		settings: settings,
		policy:   service.Policy{StrictOwnership: settings.StrictOwnership},
	}
}

// getHtmlFiles walks the local `web/html` directory and returns a list of
// template file paths. Used only in debug/development mode.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Server) funcMap() template.FuncMap {
	localizer := locale.NewLocalizer("en-US")
	return template.FuncMap{
		"i18n": func(key string, params ...string) string {
			return locale.Localize(localizer, key, params...)
		},
		"ago":   humanize.Time,
		"comma": humanize.Comma,
		"add": func(a, b int) int {
			return a + b
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

func (s *Server) sessionStore() sessions.Store {
	secret := s.settings.SecretKey
	if secret == "" {
		logger.Warning("HELPDESK_SECRET_KEY is not set, sessions will not survive a restart")
		secret = random.Seq(32)
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     s.settings.BasePath,
		MaxAge:   s.settings.SessionMaxAge * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// initRouter initializes Gin, registers middleware, templates, static assets,
// controllers and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if s.settings.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	if s.limits == nil {
		s.limits = caching.NewCache()
		if err := s.limits.Init(); err != nil {
			return nil, err
		}
	}

	engine := gin.Default()
	basePath := s.settings.BasePath

	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(sessions.Sessions(session.CookieName, s.sessionStore()))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})
	engine.Use(locale.LocalizerMiddleware())

	funcMap := s.funcMap()
	engine.SetFuncMap(funcMap)

	// Static files & templates
	if s.settings.Debug {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	g := engine.Group(basePath)
	g.Use(middleware.RequestID(), middleware.DBScope(), middleware.AuditMiddleware(s.policy))

	limiter := middleware.RateLimitMiddleware(s.limits, middleware.DefaultRateLimitConfig(s.settings.LoginRatePerMinute))
	s.index = controller.NewIndexController(g, s.policy, limiter)
	s.ticket = controller.NewTicketController(g, s.policy)
	s.admin = controller.NewAdminController(g, s.policy)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	cleanup := job.NewAuditCleanupJob(nil, s.settings.AuditRetentionDays)
	if _, err := s.cron.AddJob("@daily", cleanup); err != nil {
		logger.Warning("Add audit cleanup job error:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(time.Local))
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.settings.Listen, strconv.Itoa(s.settings.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return common.NewErrorf("listen on %s: %v", listenAddr, err)
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server and the cron scheduler.
func (s *Server) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.limits != nil {
		_ = s.limits.Flush()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil && s.httpServer == nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}
