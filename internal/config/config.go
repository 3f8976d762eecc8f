package config

import "os"

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	// SecretKey signs password reset tokens.
	SecretKey string
	SiteURL   string
	StaticDir string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SecretKey:     getEnv("SECRET_KEY", "secret_key_change_me"),
		SiteURL:       getEnv("SITE_URL", "http://localhost:8080"),
		StaticDir:     getEnv("STATIC_DIR", "./web/static"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
