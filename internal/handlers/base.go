package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}

	c.HTML(code, name, obj)
}

// CurrentUser returns the logged-in user, or nil for anonymous
// requests.
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// RenderError shows the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// redirectIfLoggedIn sends authenticated users home from pages that
// only make sense when logged out (register, login, reset flow).
func redirectIfLoggedIn(c *gin.Context) bool {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return true
	}
	return false
}
