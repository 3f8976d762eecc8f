package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/services"
	"inkwell/internal/store"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxAvatarSize caps profile picture uploads at 2 MB.
const maxAvatarSize = 2 * 1024 * 1024

type UserHandler struct {
	users   *store.UserStore
	posts   *store.PostStore
	avatars *services.AvatarService
}

func NewUserHandler(users *store.UserStore, posts *store.PostStore, avatars *services.AvatarService) *UserHandler {
	return &UserHandler{users: users, posts: posts, avatars: avatars}
}

// ShowAccount renders the profile form pre-filled with the current
// values.
func (h *UserHandler) ShowAccount(c *gin.Context) {
	user := CurrentUser(c)
	Render(c, http.StatusOK, "user/account.html", gin.H{
		"Title": "Account",
		"User":  user,
	})
}

// UpdateAccount changes username, email and optionally the profile
// picture. The old picture stays on disk; only the reference moves.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	user := CurrentUser(c)

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))

	avatar := ""
	file, header, err := c.Request.FormFile("picture")
	if err == nil {
		defer file.Close()

		if header.Size > maxAvatarSize {
			h.renderAccount(c, http.StatusBadRequest, user, "The picture must be 2 MB or smaller.")
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			h.renderAccount(c, http.StatusBadRequest, user, "Only image files are allowed.")
			return
		}

		avatar, err = h.avatars.Save(file, header)
		if err != nil {
			h.renderAccount(c, http.StatusBadRequest, user, "Could not save the picture. Only jpg and png are supported.")
			return
		}
	}

	if err := h.users.UpdateProfile(user, username, email, avatar); err != nil {
		h.renderAccount(c, accountErrorStatus(err), user, accountErrorMessage(err))
		return
	}

	Render(c, http.StatusOK, "user/account.html", gin.H{
		"Title":   "Account",
		"User":    user,
		"Success": "Your account has been updated!",
	})
}

func (h *UserHandler) renderAccount(c *gin.Context, code int, user interface{}, message string) {
	Render(c, code, "user/account.html", gin.H{
		"Title": "Account",
		"User":  user,
		"Error": message,
	})
}

func accountErrorStatus(err error) int {
	if store.IsConflict(err) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func accountErrorMessage(err error) string {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return "That username is taken. Please choose a different one."
	case errors.Is(err, store.ErrEmailTaken):
		return "That email is taken. Please choose a different one."
	case errors.As(err, &ve):
		return fmt.Sprintf("The %s %s.", ve.Field, ve.Message)
	default:
		return "Could not update the account. Please try again."
	}
}

// UserPosts lists one author's posts, newest first, paginated like the
// home page.
func (h *UserHandler) UserPosts(c *gin.Context) {
	author, err := h.users.ByUsername(c.Param("username"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "That user does not exist.")
		return
	}

	page := utils.ParsePage(c.Query("page"))
	posts, totalPages, err := h.posts.ListByAuthor(author, page, store.DefaultPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	Render(c, http.StatusOK, "user/posts.html", gin.H{
		"Title":       author.Username,
		"Author":      author,
		"Posts":       posts,
		"CurrentPage": page,
		"TotalPages":  totalPages,
	})
}
