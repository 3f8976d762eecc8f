package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// rememberMaxAge is the session cookie lifetime when "remember me" is
// checked; without it the cookie lasts until the browser closes.
const rememberMaxAge = 30 * 24 * 60 * 60

type AuthHandler struct {
	users   *store.UserStore
	tokens  *auth.ResetTokenService
	mail    *services.MailService
	siteURL string
}

func NewAuthHandler(users *store.UserStore, tokens *auth.ResetTokenService, mail *services.MailService, siteURL string) *AuthHandler {
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		mail:    mail,
		siteURL: strings.TrimSuffix(siteURL, "/"),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	form := gin.H{"Username": username, "Email": email}

	if password != confirm {
		form["Error"] = "Passwords do not match."
		Render(c, http.StatusBadRequest, "auth/register.html", form)
		return
	}

	_, err := h.users.Register(username, email, password)
	if err != nil {
		form["Error"] = registerErrorMessage(err)
		code := http.StatusBadRequest
		if store.IsConflict(err) {
			code = http.StatusConflict
		}
		Render(c, code, "auth/register.html", form)
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Success": "Your account has been created! You are now able to log in.",
	})
}

func registerErrorMessage(err error) string {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return "That username is taken. Please choose a different one."
	case errors.Is(err, store.ErrEmailTaken):
		return "That email is taken. Please choose a different one."
	case errors.As(err, &ve):
		return fmt.Sprintf("The %s %s.", ve.Field, ve.Message)
	default:
		return "Registration failed. Please try again."
	}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	remember := c.PostForm("remember") != ""

	user, err := h.users.Authenticate(email, password)
	if err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Error": "Login unsuccessful. Please check email and password.",
			"Email": email,
		})
		return
	}

	session := sessions.Default(c)
	maxAge := 0 // browser-session cookie
	if remember {
		maxAge = rememberMaxAge
	}
	session.Options(sessions.Options{Path: "/", MaxAge: maxAge, HttpOnly: true})
	session.Set(middleware.SessionUserKey, user.ID)
	session.Save()

	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	Render(c, http.StatusOK, "auth/forgot_password.html", nil)
}

// ForgotPassword issues a reset token and mails the link. Unlike login,
// this form does confirm whether an account exists for the address.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	user, err := h.users.ByEmail(email)
	if err != nil {
		Render(c, http.StatusBadRequest, "auth/forgot_password.html", gin.H{
			"Error": "There is no account with that email. You must register first.",
			"Email": email,
		})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/forgot_password.html", gin.H{
			"Error": "Could not create a reset link. Please try again.",
			"Email": email,
		})
		return
	}

	resetURL := fmt.Sprintf("%s/reset_password/%s", h.siteURL, token)
	h.mail.SendPasswordResetEmail(user.Email, resetURL)

	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Success": "An email has been sent with instructions to reset your password.",
	})
}

func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	if _, err := h.tokens.Verify(c.Param("token")); err != nil {
		Render(c, http.StatusBadRequest, "auth/forgot_password.html", gin.H{
			"Error": "That is an invalid or expired token. Please request a new reset.",
		})
		return
	}
	Render(c, http.StatusOK, "auth/reset_password.html", gin.H{"Token": c.Param("token")})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	token := c.Param("token")
	user, err := h.tokens.Verify(token)
	if err != nil {
		Render(c, http.StatusBadRequest, "auth/forgot_password.html", gin.H{
			"Error": "That is an invalid or expired token. Please request a new reset.",
		})
		return
	}

	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	if password != confirm {
		Render(c, http.StatusBadRequest, "auth/reset_password.html", gin.H{
			"Error": "Passwords do not match.",
			"Token": token,
		})
		return
	}

	if err := h.users.ResetPassword(user, password); err != nil {
		msg := "Could not reset the password. Please try again."
		var ve *store.ValidationError
		if errors.As(err, &ve) {
			msg = fmt.Sprintf("The %s %s.", ve.Field, ve.Message)
		}
		Render(c, http.StatusBadRequest, "auth/reset_password.html", gin.H{
			"Error": msg,
			"Token": token,
		})
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Success": "Your password has been updated! You are now able to log in.",
	})
}
