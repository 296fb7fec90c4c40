package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(sessions.Sessions(CookieName, cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	engine.GET("/", h)
	return engine
}

func serve(engine *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLoginUserRoundTrip(t *testing.T) {
	var got *entity.Principal
	engine := newEngine(func(c *gin.Context) {
		require.NoError(t, SetLoginUser(c, &entity.Principal{UserId: 7, FirstName: "Alice"}))
		got = GetLoginUser(c)
		c.Status(http.StatusOK)
	})

	w := serve(engine)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.UserId)
	assert.Contains(t, w.Header().Get("Set-Cookie"), CookieName+"=")
}

func TestFlashesDrainOnce(t *testing.T) {
	var first, second []Flash
	engine := newEngine(func(c *gin.Context) {
		require.NoError(t, AddFlash(c, "success", "Ticket submitted successfully!"))
		first = Flashes(c)
		second = Flashes(c)
		c.Status(http.StatusOK)
	})

	serve(engine)
	assert.Equal(t, []Flash{{Level: "success", Msg: "Ticket submitted successfully!"}}, first)
	assert.Empty(t, second)
}

func TestFlashesLogsFailedSave(t *testing.T) {
	var got []Flash
	engine := newEngine(func(c *gin.Context) {
		s := sessions.Default(c)
		// more than the cookie store can encode
		s.Set("oversized", strings.Repeat("x", 8192))
		s.AddFlash(Flash{Level: "success", Msg: "Comment added successfully"})
		got = Flashes(c)
		c.Status(http.StatusOK)
	})

	serve(engine)
	assert.Len(t, got, 1)
	warnings := logger.GetLogs(10, "WARNING")
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "Unable to save session after reading flashes")
}
