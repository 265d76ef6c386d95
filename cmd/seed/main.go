package main

import (
	"log"
	"os"

	"cardes-ai-be/internal/model"
	"cardes-ai-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Demo accounts for local development. Passwords are hashed here so the
// seeded rows look exactly like production rows.
var demoUsers = []struct {
	email    string
	username string
	password string
	role     string
}{
	{"admin@cardes.local", "admin", "admin123", "admin"},
	{"student@cardes.local", "student", "student123", "user"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo users...")
	seedUsers(db)

	color.Green("Seeding completed!")
}

func seedUsers(db *gorm.DB) {
	for _, u := range demoUsers {
		var existing model.User
		if err := db.Where("email = ?", u.email).First(&existing).Error; err == nil {
			log.Printf("User '%s' already exists, skipping...", u.email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for '%s': %v", u.email, err)
			continue
		}
		hashStr := string(hash)

		user := model.User{
			Id:           uuid.New(),
			Email:        u.email,
			Username:     u.username,
			PasswordHash: &hashStr,
			Role:         u.role,
		}

		if err := db.Create(&user).Error; err != nil {
			log.Printf("Error creating user '%s': %v", u.email, err)
		} else {
			log.Printf("Created user: %s (%s)", u.username, u.role)
		}
	}
}
