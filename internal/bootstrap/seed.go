package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/password"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.Student{},
		&entity.Teacher{},
		&entity.Course{},
		&entity.Attachment{},
		&entity.Transaction{},
		&entity.Review{},
		&entity.ModerationEvent{},
	)
}

// SeedAdmin creates the configured admin account once. Missing credentials
// skip seeding.
func SeedAdmin(ctx context.Context, accounts repository.AccountRepository, hasher password.Hasher, email, secret string) error {
	if email == "" || secret == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	existing, err := accounts.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != entity.RoleAdmin {
			log.Printf("Account %s exists with role %s, not promoting to admin", existing.Email, existing.Role)
		} else {
			log.Println("Admin user already exists, skipping seed")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := entity.NewAccount(email, entity.RoleAdmin, hash)
	if err := accounts.Create(ctx, admin, nil); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Printf("Admin user %s seeded successfully", admin.Email)
	return nil
}
