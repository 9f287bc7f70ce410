package main

import (
	"context"
	"log"
	"strconv"

	"ratehub/config"
	"ratehub/controllers"
	"ratehub/db"
	"ratehub/routes"
	"ratehub/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to MongoDB using the URI from the configuration
	database, err := db.Connect(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	ratingStore := db.NewRatingStore(database)
	statsStore := db.NewStatsStore(database)

	limiter := services.NewRateLimiter(ratingStore, cfg.RateLimit.MaxPerDay, cfg.RateLimit.CooldownHours)
	ratingService := services.NewRatingService(ratingStore, statsStore, limiter)

	// The verifier fails closed until the hub handshake delivers the
	// verification key; submissions arriving earlier get 503.
	verifier := services.NewVerifier()
	hub := services.NewHubClient(cfg.Hub.CertificateURL, cfg.Hub.WebsocketURL)
	go func() {
		if err := hub.Bootstrap(context.Background(), verifier); err != nil {
			log.Printf("Hub handshake failed, submissions stay rejected: %v", err)
		}
	}()

	// Set up the Gin router and configure routes
	router := setupRouter(ratingService, verifier)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Rating service starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(ratingService *services.RatingService, verifier *services.Verifier) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.Default())

	controller := controllers.NewRatingController(ratingService, verifier)
	routes.SetupRatingRoutes(router, controller)

	return router
}
