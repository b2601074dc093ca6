package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	MongoClient *mongo.Client
	DBName      string
	JWTSecret   string
	BaseURL     string
	Port        string
}

// Load reads the .env file (if present), connects to Mongo and returns the
// shared config handed to every controller.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	uri := getEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := getEnv("DB_NAME", "tontine")
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("MongoDB not reachable: %v", err)
	}
	log.Printf("Connected to MongoDB database %q", dbName)

	return &Config{
		MongoClient: client,
		DBName:      dbName,
		JWTSecret:   secret,
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		Port:        getEnv("PORT", "8080"),
	}
}

// Collection is a shortcut for the named collection in the configured DB.
func (c *Config) Collection(name string) *mongo.Collection {
	return c.MongoClient.Database(c.DBName).Collection(name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
