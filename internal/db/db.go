package db

import (
	"log"

	"inkwell/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs migrations. Tests open their own
// connection with the sqlite dialector and call Migrate directly.
func Open(dsn string) *gorm.DB {
	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey, which the stores rely on as the
	// commit-time backstop for racing registrations.
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
	)
}
