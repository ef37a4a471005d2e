package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/config"
)

func CreateUser(cfg *config.Config, username, password string, isAdmin bool) error {
	_, repo, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := repo.CreateUser(context.Background(), username, hashed, isAdmin)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", username, err)
	}

	log.Printf("created user %q (id=%d, admin=%t)", user.Username, user.Id, user.IsAdmin)
	return nil
}

func ResetPassword(cfg *config.Config, username, password string) error {
	_, repo, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if err := repo.UpdatePassword(context.Background(), username, hashed); err != nil {
		return fmt.Errorf("failed to reset password for %q: %w", username, err)
	}

	log.Printf("password reset for user %q", username)
	return nil
}
