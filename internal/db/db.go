package db

import (
	"log"

	"govhub/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the Postgres connection and migrates the schema.
func Init(dsn string) *gorm.DB {
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=govhub port=5432 sslmode=disable"
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connection established")

	err = conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedWelcomePost(conn)

	return conn
}

// seedWelcomePost creates an initial post when the table is empty so a fresh
// deployment has something to vote on.
func seedWelcomePost(conn *gorm.DB) {
	var count int64
	conn.Model(&models.Post{}).Count(&count)
	if count > 0 {
		return
	}

	system := models.User{
		WalletAddress: "0x0000000000000000000000000000000000000000",
		IsAdmin:       true,
	}
	if err := conn.Where(models.User{WalletAddress: system.WalletAddress}).
		FirstOrCreate(&system).Error; err != nil {
		log.Printf("Failed to create system user: %v", err)
		return
	}

	post := models.Post{
		Title:     "Welcome to the Governance Hub",
		Slug:      "welcome",
		Content:   "Connect your wallet, sign in, and start voting on proposals and discussions.",
		Published: true,
		AuthorID:  system.ID,
	}
	if err := conn.Create(&post).Error; err != nil {
		log.Printf("Failed to seed welcome post: %v", err)
		return
	}
	log.Println("Seeded welcome post")
}
