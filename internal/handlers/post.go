package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *store.PostStore
	cache *utils.Cache
}

func NewPostHandler(posts *store.PostStore, cache *utils.Cache) *PostHandler {
	return &PostHandler{posts: posts, cache: cache}
}

// homeCachePrefix keys the cached home pages; mutations sweep the
// whole prefix so later pages never serve stale listings.
const homeCachePrefix = "post:home:page:"

// homePage is the per-page model Home caches. Only this page data is
// cached; the gin.H handed to Render is built fresh per request, so
// session-bound values like CurrentUser never cross requests.
type homePage struct {
	Posts       []models.Post
	CurrentPage int
	TotalPages  int
}

// Home lists all posts newest-first, five per page. Pages are cached
// for a minute; every mutation below sweeps all cached pages.
func (h *PostHandler) Home(c *gin.Context) {
	page := utils.ParsePage(c.Query("page"))

	cacheKey := fmt.Sprintf("%s%d", homeCachePrefix, page)
	if cached := h.cache.Get(cacheKey); cached != nil {
		if pageData, ok := cached.(homePage); ok {
			h.renderHome(c, pageData)
			return
		}
	}

	posts, totalPages, err := h.posts.ListPage(page, store.DefaultPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	pageData := homePage{Posts: posts, CurrentPage: page, TotalPages: totalPages}
	h.cache.Set(cacheKey, pageData, 1*time.Minute)

	h.renderHome(c, pageData)
}

func (h *PostHandler) renderHome(c *gin.Context, pageData homePage) {
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Posts":       pageData.Posts,
		"CurrentPage": pageData.CurrentPage,
		"TotalPages":  pageData.TotalPages,
		"Title":       "Home",
	})
}

func (h *PostHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", gin.H{"Title": "New Post"})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	title := c.PostForm("title")
	content := c.PostForm("content")

	post, err := h.posts.Create(title, content, user)
	if err != nil {
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{
			"Title": "New Post",
			"Error": postErrorMessage(err),
			"Form":  gin.H{"Title": title, "Content": content},
		})
		return
	}

	h.cache.DeletePrefix(homeCachePrefix)
	c.Redirect(http.StatusFound, "/post/"+post.Slug)
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "That post does not exist.")
		return
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Title":       post.Title,
		"Post":        post,
		"PostContent": utils.RenderMarkdown(post.Content),
	})
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := CurrentUser(c)

	post, err := h.posts.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "That post does not exist.")
		return
	}
	if post.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "You cannot edit someone else's post.")
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title": "Update Post",
		"Post":  post,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := CurrentUser(c)

	post, err := h.posts.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "That post does not exist.")
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")

	updated, err := h.posts.Update(post.ID, title, content, user)
	if err != nil {
		if errors.Is(err, store.ErrForbidden) {
			RenderError(c, http.StatusForbidden, "You cannot edit someone else's post.")
			return
		}
		Render(c, http.StatusBadRequest, "post/edit.html", gin.H{
			"Title": "Update Post",
			"Error": postErrorMessage(err),
			"Post":  post,
		})
		return
	}

	h.cache.DeletePrefix(homeCachePrefix)
	c.Redirect(http.StatusFound, "/post/"+updated.Slug)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)

	post, err := h.posts.BySlug(c.Param("slug"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "That post does not exist.")
		return
	}

	if err := h.posts.Delete(post.ID, user); err != nil {
		if errors.Is(err, store.ErrForbidden) {
			RenderError(c, http.StatusForbidden, "You cannot delete someone else's post.")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not delete the post.")
		return
	}

	h.cache.DeletePrefix(homeCachePrefix)
	c.Redirect(http.StatusFound, "/")
}

func postErrorMessage(err error) string {
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("The %s %s.", ve.Field, ve.Message)
	}
	return "Could not save the post. Please try again."
}
