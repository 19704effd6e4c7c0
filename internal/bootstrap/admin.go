// Package bootstrap holds one-off initialization run at process start.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

// AdminStore is the slice of the user repository EnsureAdmin needs.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, email, password, role string, cost int) (string, error)
	SetRole(ctx context.Context, id, role string) error
}

// EnsureAdmin makes sure an ADMIN account exists for email.  An existing
// account is promoted rather than recreated; its password is left alone.
// Running it any number of times leaves exactly one account for email.
func EnsureAdmin(ctx context.Context, users AdminStore, email, password string, cost int, log *zap.Logger) error {
	if email == "" {
		log.Info("admin bootstrap skipped, ADMIN_EMAIL not set")
		return nil
	}
	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == model.RoleAdmin {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		log.Info("existing user promoted to admin", zap.String("user_id", u.ID))
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to create the admin account")
	}
	id, err := users.Create(ctx, email, password, model.RoleAdmin, cost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// another instance won the race
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account created", zap.String("user_id", id))
	return nil
}
