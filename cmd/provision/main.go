// Command provision creates users and admins out of band.
//
// Usage:
//
//	provision -role user -username alice -password 'Secret123'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"shortlinks/internal/auth"
	"shortlinks/internal/config"
	"shortlinks/internal/db"
	"shortlinks/internal/models"
	"shortlinks/internal/validation"
)

func main() {
	role := flag.String("role", models.RoleUser, `principal role: "user" or "admin"`)
	username := flag.String("username", "", "username for the new principal")
	password := flag.String("password", "", "initial password")
	flag.Parse()

	if *role != models.RoleUser && *role != models.RoleAdmin {
		log.Fatalf("Invalid role %q: must be \"user\" or \"admin\"", *role)
	}
	if ok, msg := validation.ValidateUsername(*username); !ok {
		log.Fatalf("Invalid username: %s", msg)
	}
	if ok, msg := validation.ValidatePassword(*password); !ok {
		log.Fatalf("Invalid password: %s", msg)
	}

	godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	principal := &models.Principal{
		Username:     *username,
		PasswordHash: hash,
		Secret:       &secret,
	}
	if err := database.CreatePrincipal(ctx, *role, principal); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			log.Fatalf("Error: %s %q already exists", *role, *username)
		}
		log.Fatalf("Failed to create %s: %v", *role, err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	token, err := tokens.Issue(principal.Username, *role, secret)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("%s created successfully!\n", *role)
	fmt.Printf("Username:   %s\n", principal.Username)
	fmt.Printf("ID:         %s\n", principal.ID)
	fmt.Printf("Created At: %s\n", principal.CreatedAt)
	fmt.Printf("Token:      %s\n", token)
	fmt.Println("\nThe token expires like any login token; log in to get a fresh one.")
	os.Exit(0)
}
