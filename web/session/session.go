// Package session keeps the logged-in principal and one-shot flash messages
// in the signed session cookie.
package session

import (
	"encoding/gob"

	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser  = "LOGIN_USER"
	CookieName = "helpdesk"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level string
	Msg   string
}

func init() {
	gob.Register(entity.Principal{})
	gob.Register(Flash{})
}

func SetLoginUser(c *gin.Context, pr *entity.Principal) error {
	s := sessions.Default(c)
	s.Set(loginUser, *pr)
	return s.Save()
}

func GetLoginUser(c *gin.Context) *entity.Principal {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if pr, ok := obj.(entity.Principal); ok {
			return &pr
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   c.GetString("base_path"),
		MaxAge: -1,
	})
	return s.Save()
}

// AddFlash queues msg for the next page. Level is "success" or "error".
func AddFlash(c *gin.Context, level, msg string) error {
	s := sessions.Default(c)
	s.AddFlash(Flash{Level: level, Msg: msg})
	return s.Save()
}

// Flashes drains the queued messages.
func Flashes(c *gin.Context) []Flash {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(); err != nil {
		logger.Warning("Unable to save session after reading flashes:", err)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
