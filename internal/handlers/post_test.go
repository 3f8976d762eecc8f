package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/store"
	"inkwell/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Minimal templates so c.HTML has something to execute.
const testTemplates = `
{{define "post/list.html"}}{{if .CurrentUser}}user:{{.CurrentUser.Username}}|{{end}}page:{{.CurrentPage}}/{{.TotalPages}}{{range .Posts}}|{{.Title}}{{end}}{{end}}
{{define "post/create.html"}}create:{{.Error}}{{end}}
{{define "error.html"}}error:{{.Error}}{{end}}
`

func newPostTestEnv(t *testing.T) (*gin.Engine, *store.UserStore, *store.PostStore) {
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
	posts := store.NewPostStore(gdb)
	handler := NewPostHandler(posts, utils.NewCache(16))

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.LoadUser(users))

	r.GET("/login-as/:id", func(c *gin.Context) {
		var id uint
		fmt.Sscanf(c.Param("id"), "%d", &id)
		session := sessions.Default(c)
		session.Set(middleware.SessionUserKey, id)
		session.Save()
		c.Status(http.StatusOK)
	})

	r.GET("/", handler.Home)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	authorized.POST("/submit", handler.Create)

	return r, users, posts
}

func loginAs(t *testing.T, r *gin.Engine, id uint) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/login-as/%d", id), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func doGet(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHomeCacheHitKeepsSessionsApart(t *testing.T) {
	r, users, posts := newPostTestEnv(t)

	alice, err := users.Register("alice", "a@x.com", "pwpwpw")
	require.NoError(t, err)
	_, err = posts.Create("Hello", "body", alice)
	require.NoError(t, err)

	cookies := loginAs(t, r, alice.ID)

	// Cold cache, rendered for alice
	w := doGet(r, "/", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user:alice")
	assert.Contains(t, w.Body.String(), "Hello")

	// The cache hit for an anonymous visitor must not carry alice over
	w = doGet(r, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "alice")
	assert.Contains(t, w.Body.String(), "Hello")
}

func TestHomeCacheSweptOnCreate(t *testing.T) {
	r, users, posts := newPostTestEnv(t)

	alice, err := users.Register("alice", "a@x.com", "pwpwpw")
	require.NoError(t, err)
	for i := 1; i <= 6; i++ {
		_, err := posts.Create(fmt.Sprintf("p%d", i), "body", alice)
		require.NoError(t, err)
	}

	// Warm both pages
	w := doGet(r, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p6")
	w = doGet(r, "/?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p1")
	assert.NotContains(t, w.Body.String(), "p2")

	// A new post shifts every page, not just the first one
	cookies := loginAs(t, r, alice.ID)
	form := url.Values{"title": {"p7"}, "content": {"body"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	w = doGet(r, "/", nil)
	assert.Contains(t, w.Body.String(), "p7")
	w = doGet(r, "/?page=2", nil)
	assert.Contains(t, w.Body.String(), "p2")
}
