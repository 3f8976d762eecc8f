package middleware

import (
	"net/http"
	"net/url"

	"inkwell/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user id.
const SessionUserKey = "user_id"

// LoadUser resolves the session user once per request and puts the
// record on the gin context. A stale id (user gone) is left unresolved
// and the request proceeds as anonymous.
func LoadUser(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserKey).(uint); ok {
			if user, err := users.ByID(userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// AuthRequired refuses the request before the handler runs when no
// user is bound, redirecting to the login page with the original path
// in ?next= so login can return there.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}
