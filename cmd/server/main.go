package main

import (
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/store"
	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()

	// Database
	gdb := db.Open(cfg.DatabaseURL)

	// Stores and services, passed explicitly into the handlers
	userStore := store.NewUserStore(gdb)
	postStore := store.NewPostStore(gdb)
	tokenService := auth.NewResetTokenService([]byte(cfg.SecretKey), auth.DefaultResetTokenTTL, userStore)
	mailService := services.NewMailService(cfg)
	avatarService := services.NewAvatarService(cfg.StaticDir)
	pageCache := utils.NewCache(500)

	// Gin
	r := gin.Default()

	// Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("inkwell_session", sessionStore))

	// Templates
	r.HTMLRender = loadTemplates("./web/templates")

	// Static assets, including uploaded profile pictures
	r.Static("/static", cfg.StaticDir)

	// Middleware
	r.Use(middleware.LoadUser(userStore))

	// Handlers
	authHandler := handlers.NewAuthHandler(userStore, tokenService, mailService, cfg.SiteURL)
	postHandler := handlers.NewPostHandler(postStore, pageCache)
	userHandler := handlers.NewUserHandler(userStore, postStore, avatarService)

	router.RegisterRoutes(r, authHandler, postHandler, userHandler)

	log.Printf("Inkwell server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)
	r.AddFromFilesFuncs("auth/forgot_password.html", funcMap, assemble(templatesDir+"/views/auth/forgot_password.html")...)
	r.AddFromFilesFuncs("auth/reset_password.html", funcMap, assemble(templatesDir+"/views/auth/reset_password.html")...)

	// Posts
	r.AddFromFilesFuncs("post/list.html", funcMap, assemble(templatesDir+"/views/post/list.html")...)
	r.AddFromFilesFuncs("post/detail.html", funcMap, assemble(templatesDir+"/views/post/detail.html")...)
	r.AddFromFilesFuncs("post/create.html", funcMap, assemble(templatesDir+"/views/post/create.html")...)
	r.AddFromFilesFuncs("post/edit.html", funcMap, assemble(templatesDir+"/views/post/edit.html")...)

	// User
	r.AddFromFilesFuncs("user/account.html", funcMap, assemble(templatesDir+"/views/user/account.html")...)
	r.AddFromFilesFuncs("user/posts.html", funcMap, assemble(templatesDir+"/views/user/posts.html")...)

	// Misc
	r.AddFromFilesFuncs("about.html", funcMap, assemble(templatesDir+"/views/about.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
