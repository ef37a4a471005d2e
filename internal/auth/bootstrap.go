package auth

import (
	"context"
	"log"

	"github.com/cockroachdb/errors"

	"github.com/rm-hull/l8tefuel-api/internal"
)

const DefaultAdminPassword = "admin123"

// EnsureAdmin creates the initial admin account if it does not exist yet.
// It returns true when a new account was created.
func EnsureAdmin(ctx context.Context, repo internal.Repository, username, password string) (bool, error) {
	if password == DefaultAdminPassword {
		log.Printf("WARNING: admin account %q uses the default password. Set ADMIN_PASSWORD and change it immediately.", username)
	}

	_, err := repo.GetUser(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return false, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if _, err := repo.CreateUser(ctx, username, hashed, true); err != nil {
		return false, errors.Wrapf(err, "failed to create admin %q", username)
	}

	log.Printf("Created initial admin account %q", username)
	return true, nil
}
