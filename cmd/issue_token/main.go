package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"byte_battle/internal/db"
	"byte_battle/internal/domain"
	"byte_battle/internal/repository"
	"byte_battle/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "user id to issue the token for")
	name := flag.String("name", "", "display name carried in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	create := flag.Bool("create", false, "create a users row (requires DATABASE_URL) and use its id")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	if *create {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL not set")
		}
		ctx := context.Background()
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()

		u := &domain.User{Username: *name, FirstName: *name}
		if err := repository.NewUserRepository(pool).Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}
		log.Printf("user created id=%d", u.ID)
		*userID = u.ID
	}

	if *userID <= 0 {
		log.Fatal("-user or -create is required")
	}
	token, err := service.GenerateJWT(*userID, *name, *ttl)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	fmt.Println(token)
}
