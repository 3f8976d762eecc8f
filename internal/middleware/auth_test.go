package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.UserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	users := store.NewUserStore(gdb)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser(users))

	// Test login endpoint binding an arbitrary user id to the session
	r.GET("/login-as/:id", func(c *gin.Context) {
		var id uint
		fmt.Sscanf(c.Param("id"), "%d", &id)
		session := sessions.Default(c)
		session.Set(SessionUserKey, id)
		session.Save()
		c.Status(http.StatusOK)
	})

	protected := r.Group("/")
	protected.Use(AuthRequired())
	protected.GET("/protected", func(c *gin.Context) {
		user, _ := c.Get(CheckUserKey)
		c.String(http.StatusOK, "hello %v", user)
	})
	protected.GET("/settings/:section", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, users
}

func TestAuthRequired_Anonymous(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fprotected", w.Header().Get("Location"))

	// The escaped value must round-trip back to the original path
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/protected", loc.Query().Get("next"))
}

func TestAuthRequired_NextEscapesReservedCharacters(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settings/a&b", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/settings/a&b", loc.Query().Get("next"))
}

func TestAuthRequired_LoggedIn(t *testing.T) {
	r, users := newTestRouter(t)

	user, err := users.Register("alice", "a@x.com", "pwpwpw")
	require.NoError(t, err)

	// Log in and capture the session cookie
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/login-as/%d", user.ID), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthRequired_StaleSessionUser(t *testing.T) {
	r, _ := newTestRouter(t)

	// A session id that resolves to no user is treated as anonymous
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login-as/9999", nil)
	r.ServeHTTP(w, req)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}
