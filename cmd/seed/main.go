// Seeds the database with demo users and the default public channels.
// Re-running against an already-seeded database is a no-op.
package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"chatspace/internal/config"
	"chatspace/internal/db"
	"chatspace/internal/models"
	"chatspace/internal/store/postgres"
)

var usersData = []struct {
	Username, Email, Password string
}{
	{"Alice", "alice@example.com", "password123"},
	{"Bob", "bob@example.com", "password123"},
	{"Charlie", "charlie@example.com", "password123"},
	{"David", "david@example.com", "password123"},
}

var channelNames = []string{"#general", "#random"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}
	if count > 0 {
		log.Println("Database already seeded. Skipping.")
		return
	}

	st := postgres.New(pool)

	log.Println("Seeding users...")
	var memberIDs []string
	for _, data := range usersData {
		hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		user := models.User{
			Username:     data.Username,
			Email:        data.Email,
			PasswordHash: string(hash),
		}
		if err := st.CreateUser(ctx, &user); err != nil {
			log.Fatalf("Failed to create user %s: %v", data.Username, err)
		}
		memberIDs = append(memberIDs, user.ID)
		log.Printf("- Created user: %s", user.Username)
	}

	log.Println("Seeding rooms...")
	for _, name := range channelNames {
		room := models.Room{Name: name, IsPublic: true, Members: memberIDs}
		if _, err := st.CreateRoom(ctx, &room, ""); err != nil {
			log.Fatalf("Failed to create room %s: %v", name, err)
		}
		log.Printf("- Created room: %s", name)
	}

	log.Println("Seeding complete.")
}
