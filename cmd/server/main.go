package main

import (
	"log"

	"govhub/internal/config"
	"govhub/internal/db"
	"govhub/internal/router"
	"govhub/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg := config.Load()

	conn := db.Init(cfg.DatabaseURL)
	st := store.NewGorm(conn)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	router.Register(r, cfg, st)

	log.Printf("govhub server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
