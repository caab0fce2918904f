package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/khanaghar/khanaghar-backend/config"
	"github.com/khanaghar/khanaghar-backend/internal/app/model"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/khanaghar/khanaghar-backend/pkg/util"
	"gorm.io/gorm"
)

// Seeds the first admin account. Admin sign-in is OTP-gated, so there is no
// self-service admin registration; this is the bootstrap path.
func main() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if email == "" || password == "" {
		log.Fatal("Usage: ADMIN_EMAIL=... ADMIN_PASSWORD=... [ADMIN_NAME=...] go run cmd/seed/main.go")
	}
	if name == "" {
		name = "Administrator"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())

	if _, err := userRepo.FindByEmail(email); err == nil {
		fmt.Printf("Admin account %s already exists, nothing to do.\n", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal("Failed to check for existing admin:", err)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleAdmin,
		Status:       model.AccountActive,
	}
	if err := userRepo.Create(admin); err != nil {
		log.Fatal("Failed to create admin account:", err)
	}

	fmt.Printf("Admin account created: %s (id=%d)\n", email, admin.ID)
}
