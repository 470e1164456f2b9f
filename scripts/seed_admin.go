package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the first ADMIN account. Run once against a fresh database:
//
//	ADMIN_EMAIL=ops@example.org ADMIN_PASSWORD=... go run scripts/seed_admin.go
func main() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		databaseName = "relief_hub"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(ctx)

	collection := client.Database(databaseName).Collection("users")

	count, err := collection.CountDocuments(ctx, bson.M{"role": "ADMIN"})
	if err != nil {
		log.Fatal(err)
	}
	if count > 0 {
		fmt.Printf("Admin account already exists (%d found), nothing to do\n", count)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	now := time.Now()
	result, err := collection.InsertOne(ctx, bson.M{
		"email":         email,
		"password_hash": string(hash),
		"name":          "Administrator",
		"role":          "ADMIN",
		"is_verified":   true,
		"is_blocked":    false,
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Created admin account %s (%v)\n", email, result.InsertedID)
}
