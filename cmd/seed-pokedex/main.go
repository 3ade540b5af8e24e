package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lpielikys/pokedextracker-backend/internal/config"
	"github.com/lpielikys/pokedextracker-backend/internal/database"
	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

// Seeds the pokedex catalog collection from PokeAPI metadata. Safe to re-run:
// entries are upserted by dex number.
func main() {
	regionFlag := flag.String("region", "", "seed a single region (default: all)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	regions := services.AllRegions()
	if *regionFlag != "" {
		name := strings.ToLower(*regionFlag)
		if !services.IsValidRegion(name) {
			log.Fatalf("Invalid region %q. Valid regions: %s", *regionFlag, strings.Join(regions, ", "))
		}
		regions = []string{name}
	}

	coll := database.DB.Collection("pokedex")
	opts := options.Update().SetUpsert(true)

	total := 0
	for _, region := range regions {
		catalog, err := services.PokemonByRegion(region)
		if err != nil {
			log.Fatalf("Failed to build %s catalog: %v", region, err)
		}
		log.Printf("Seeding %s (%d pokemon)...", region, len(catalog))

		for _, p := range catalog {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			meta := services.PokemonMeta(ctx, p.PokemonID)
			meta.Region = region

			_, err := coll.UpdateOne(ctx,
				bson.M{"pokemonId": meta.PokemonID},
				bson.M{"$set": meta},
				opts,
			)
			cancel()
			if err != nil {
				log.Fatalf("Failed to upsert pokemon %d: %v", meta.PokemonID, err)
			}
			total++
		}
		log.Printf("✅ %s seeded", region)
	}

	log.Printf("🚀 Pokedex catalog seeded: %d entries", total)
}
