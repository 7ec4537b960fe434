package main

import (
	"context"
	"flag"
	"os"

	"go-packet-inventory/internal/config"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/pkg/database"
	applog "go-packet-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// reset-password sets a new password for an account and ends its sessions.
//
//	go run ./cmd/reset-password -email owner@example.com -password newsecret
func main() {
	email := flag.String("email", os.Getenv("RESET_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("RESET_PASSWORD"), "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	_ = godotenv.Load()
	cfg := config.Load()
	log := applog.New(cfg.AppEnv)
	defer log.Sync()

	if *email == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -email <email> -password <new password, min 6 chars>")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepo(db)

	// 3. Find account
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	// 4. Hash and store
	if err := user.SetPassword(*password); err != nil {
		log.Fatal("hash password", zap.Error(err))
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatal("update password", zap.Error(err))
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		log.Fatal("revoke sessions", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", user.Email), zap.String("user_id", user.ID.String()))
}
