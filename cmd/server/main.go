package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"

	"github.com/go-chi/chi/v5"
	"github.com/lpielikys/pokedextracker-backend/internal/config"
	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/handlers"
	"github.com/lpielikys/pokedextracker-backend/internal/middleware"
	"github.com/lpielikys/pokedextracker-backend/internal/routes"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Log connection attempt (without showing password)
	log.Printf("Connecting to MongoDB...")
	if cfg.MongoURI != "" {
		// Mask password in log for security
		maskedURI := cfg.MongoURI
		if strings.Contains(maskedURI, "@") {
			parts := strings.Split(maskedURI, "@")
			if len(parts) > 0 && strings.Contains(parts[0], ":") {
				userPass := strings.Split(parts[0], ":")
				if len(userPass) >= 3 {
					maskedURI = strings.Replace(maskedURI, userPass[2], "***", 1)
				}
			}
		}
		log.Printf("MongoDB URI: %s", maskedURI)
	}

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()
	services.InitCollectionStore(cfg.UserdexColl)

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Initialize blob storage, managed search and directory services
	if err := handlers.InitServices(cfg); err != nil {
		log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		log.Println("Screenshot uploads will not be available")
	} else {
		if cfg.CloudinaryName != "" {
			log.Println("✅ Cloudinary media service initialized")
		} else {
			log.Println("Warning: Cloudinary credentials not found. Screenshot uploads will not be available")
		}
		if cfg.SearchConfigured() {
			log.Println("✅ Managed search index configured")
		} else {
			log.Println("Managed search index not configured. Search runs locally")
		}
	}

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware)

	// Health check (no rate limit)
	r.Get("/health", handlers.Health)

	// Setup routes
	routes.SetupRoutes(r)

	log.Printf("🚀 Pokedex tracker backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
