package config

import (
	"os"
	"strings"
)

type Config struct {
	MongoURI       string
	MongoDBName    string
	UserdexColl    string // collection name for per-user caught entries
	RedisURI       string
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	MediaFolder         string // Cloudinary folder for uploaded screenshots

	// Managed search index (optional; local keyword search is used when unset)
	SearchEndpoint string
	SearchAPIKey   string
	SearchIndex    string

	// Identity directory (Microsoft Graph style) for admin role resolution
	DirectoryEndpoint string
	DirectoryTenant   string // tenant domain, e.g. example.onmicrosoft.com
	DirectoryClientID string
	DirectorySecret   string
	DirectoryAppID    string // service principal object id owning the app roles
	AdminRoleName     string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/pokedextracker")),
		MongoDBName:    getEnv("MONGODB_DB_NAME", "pokedextracker"),
		UserdexColl:    getEnv("USERDEX_COLLECTION_NAME", "userdex"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		Environment:    env,

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		MediaFolder:         getEnv("MEDIA_FOLDER", "pokemon-media"),

		SearchEndpoint: strings.TrimRight(getEnv("SEARCH_ENDPOINT", ""), "/"),
		SearchAPIKey:   getEnv("SEARCH_API_KEY", ""),
		SearchIndex:    getEnv("SEARCH_INDEX", "userdex"),

		DirectoryEndpoint: strings.TrimRight(getEnv("DIRECTORY_ENDPOINT", "https://graph.microsoft.com/v1.0"), "/"),
		DirectoryTenant:   getEnv("DIRECTORY_TENANT", ""),
		DirectoryClientID: getEnv("DIRECTORY_CLIENT_ID", ""),
		DirectorySecret:   getEnv("DIRECTORY_CLIENT_SECRET", ""),
		DirectoryAppID:    getEnv("DIRECTORY_APP_OBJECT_ID", ""),
		AdminRoleName:     getEnv("ADMIN_ROLE_NAME", "Admin"),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// SearchConfigured reports whether the managed search index can be used.
func (c *Config) SearchConfigured() bool {
	return c.SearchEndpoint != "" && c.SearchAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
