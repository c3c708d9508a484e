package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/taskboard/taskboard/internal/auth"
	"github.com/taskboard/taskboard/internal/db/models"
	"github.com/taskboard/taskboard/internal/db/repositories"
)

// Bootstrap seeds an empty database with a default organization and one user
// per role so a fresh deployment can be logged into immediately. Any existing
// user makes it a no-op, so it is safe to run on every startup.
func Bootstrap(ctx context.Context, database *sqlx.DB, orgName, password string) error {
	users := repositories.NewUserRepository(database)

	total, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if total > 0 {
		return nil
	}

	org := &models.Organization{Name: orgName}
	if err := repositories.NewOrganizationRepository(database).CreateOrganization(ctx, org); err != nil {
		return fmt.Errorf("failed to create organization %q: %w", orgName, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleViewer} {
		user := &models.User{
			Username:       strings.ToLower(string(role)),
			PasswordHash:   hash,
			Role:           role,
			OrganizationID: &org.ID,
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", user.Username, err)
		}
		slog.Info("seeded user", "username", user.Username, "role", user.Role)
	}

	slog.Info("bootstrap complete", "organization", orgName, "users", 3)
	return nil
}
