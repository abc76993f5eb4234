// Command seed creates a user directly in the database, for bootstrapping
// a fresh deployment before anyone can log in.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"shulsite/api/internal/config"
	"shulsite/api/internal/database"
	"shulsite/api/internal/ids"
	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
	"shulsite/api/internal/security"
)

func main() {
	name := flag.String("name", "", "display name for the new user")
	pin := flag.String("pin", "", "6-digit login PIN")
	role := flag.String("role", "admin", "role: admin or editor")
	flag.Parse()

	if err := run(*name, *pin, *role); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(name, pin, role string) error {
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	if !security.ValidPIN(pin) {
		return fmt.Errorf("-pin must be exactly 6 digits")
	}
	userRole := models.UserRole(role)
	if userRole != models.UserRoleAdmin && userRole != models.UserRoleEditor {
		return fmt.Errorf("-role must be admin or editor")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, cfg.Postgres); err != nil {
		return err
	}

	pinHash, err := security.HashPIN(pin)
	if err != nil {
		return err
	}

	user := models.User{
		ID:      ids.New(),
		Name:    name,
		PINHash: pinHash,
		Role:    userRole,
	}

	if err := repository.NewUserRepository(pool).Create(ctx, user); err != nil {
		return err
	}

	fmt.Printf("created %s user %q (id %s)\n", user.Role, user.Name, user.ID)
	return nil
}
