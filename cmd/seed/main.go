package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-api/config"
	"github.com/oksasatya/user-api/internal/domain/entity"
	pginfra "github.com/oksasatya/user-api/internal/infrastructure/postgres"
)

var demoUsers = []entity.User{
	{FirstName: "Alice", Email: "alice@example.ch", Password: "alice-pass"},
	{FirstName: "Bob", Email: "bob@example.ch", Password: "bob-pass"},
	{FirstName: "Alice", Email: "alice.other@example.ch", Password: "other-pass"},
}

// seed inserts demo users straight into the store. No events are published.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	for _, u := range demoUsers {
		email := u.Email
		existing, err := repo.FindByExample(ctx, entity.UserCriteria{Email: &email})
		if err != nil {
			log.Fatalf("failed to look up %s: %v", u.Email, err)
		}
		if len(existing) > 0 {
			fmt.Printf("user already present: id=%d email=%s\n", existing[0].ID, u.Email)
			continue
		}
		if err := repo.Create(ctx, &u); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("seeded user: %s\n", u)
	}
}
