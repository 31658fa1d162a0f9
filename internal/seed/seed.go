// Package seed creates the default super admin on first startup so a fresh
// deployment can be administered immediately.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/pkg/auth"
	"github.com/rs/zerolog"
)

const (
	defaultAdminEmail    = "admin@student-visit.lsa.umich.edu"
	defaultAdminPassword = "ChangeMe!2024"
)

// CreateDefaultData seeds the super admin account if no super admin exists.
// The password comes from SEED_ADMIN_PASSWORD when set.
func CreateDefaultData(ctx context.Context, db *pgxpool.Pool, lgr zerolog.Logger) error {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE role_type = $1)`, models.RoleSuperAdmin).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for super admin: %w", err)
	}
	if exists {
		return nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		lgr.Warn().Msg("Seeding super admin with the default password; set SEED_ADMIN_PASSWORD and rotate it")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (email, password, first_name, last_name, role_type, is_active)
		VALUES ($1, $2, 'System', 'Administrator', $3, TRUE)
	`, defaultAdminEmail, hashed, models.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	lgr.Info().Str("email", defaultAdminEmail).Msg("Super admin account created")
	return nil
}
