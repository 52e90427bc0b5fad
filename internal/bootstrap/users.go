package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wareflow/backend/internal/application/services"
)

// InitializeAdminUser creates the first account when the user table is
// empty. The password comes from ADMIN_PASSWORD; without it an empty
// installation simply has no users yet.
func InitializeAdminUser(ctx context.Context, auth *services.AuthService, count int) error {
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️ No users exist and ADMIN_PASSWORD is unset, skipping admin seed")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@wareflow.local"
	}

	if _, err := auth.Register(ctx, "Administrator", email, password, "admin"); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Printf("👤 Seeded admin user %s", email)
	return nil
}
