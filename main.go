package main

import (
	"log"
	"net/http"
	"os"

	"github.com/edu-safe/api-go/config"
	"github.com/edu-safe/api-go/routes"
	"github.com/edu-safe/api-go/seed"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	db := config.InitDB()

	if os.Getenv("SEED_MODULES") == "true" {
		if err := seed.Modules(db); err != nil {
			log.Fatal("Failed to seed modules:", err)
		}
	}

	// Create a new Gin router
	r := gin.Default()

	// Add logging middleware
	r.Use(gin.LoggerWithWriter(os.Stdout))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "EduSafe Server is running!",
			"status":  "success",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		database := "Connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			database = "Disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "OK",
			"database": database,
		})
	})

	// Initialize routes
	routes.SetupRoutes(r, db)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Route not found",
			"status":  "error",
		})
	})

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	r.Run(":" + port)
}
