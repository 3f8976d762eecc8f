package router

import (
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every HTTP route to its handler. Handlers are
// built in main with their stores injected; this table is the only
// place the URL surface is defined.
func RegisterRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, postHandler *handlers.PostHandler, userHandler *handlers.UserHandler) {
	// Public Routes
	r.GET("/", postHandler.Home)
	r.GET("/about", postHandler.About)
	r.GET("/post/:slug", postHandler.Detail)
	r.GET("/user/:username", userHandler.UserPosts)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Password reset flow (logged-out users)
	r.GET("/reset_password", authHandler.ShowForgotPassword)
	r.POST("/reset_password", authHandler.ForgotPassword)
	r.GET("/reset_password/:token", authHandler.ShowResetPassword)
	r.POST("/reset_password/:token", authHandler.ResetPassword)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/account", userHandler.ShowAccount)
		authorized.POST("/account", userHandler.UpdateAccount)

		// Create lives at /submit: a static /post/new sibling would
		// conflict with the /post/:slug wildcard in gin's route tree.
		authorized.GET("/submit", postHandler.ShowCreate)
		authorized.POST("/submit", postHandler.Create)
		authorized.GET("/post/:slug/update", postHandler.ShowEdit)
		authorized.POST("/post/:slug/update", postHandler.Update)
		authorized.POST("/post/:slug/delete", postHandler.Delete)
	}
}
