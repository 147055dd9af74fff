package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/internal/users"
	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/security"
)

type adminRepository interface {
	Create(ctx context.Context, in users.NewUser) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, role enums.Role, passwordHash string) error
}

// EnsureAdmin creates the configured admin account, or promotes and resets
// the password of an existing account with the same phone number. It is a
// no-op when no bootstrap admin is configured.
func EnsureAdmin(ctx context.Context, repo adminRepository, cfg config.BootstrapAdminConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	phone, err := users.NormalizeIdentifier(cfg.Identifier)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "bootstrap admin identifier")
	}
	if err := security.ValidatePassword(cfg.Password); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "bootstrap admin password")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Store Admin"
	}

	ctx = logg.WithField(ctx, "admin_phone", phone)

	existing, err := repo.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		ok, verr := security.VerifyPassword(cfg.Password, existing.PasswordHash)
		if verr == nil && ok && existing.Role == enums.RoleAdmin && existing.IsActive && !security.NeedsRehash(existing.PasswordHash, passwordCfg) {
			logg.Debug(ctx, "bootstrap admin already present")
			return nil
		}
		hash, err := security.HashPassword(cfg.Password, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		if err := repo.UpdateCredentials(ctx, existing.ID, enums.RoleAdmin, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bootstrap admin")
		}
		logg.Info(ctx, "bootstrap admin credentials refreshed")
		return nil
	case !db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup bootstrap admin")
	}

	hash, err := security.HashPassword(cfg.Password, passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if _, err := repo.Create(ctx, users.NewUser{
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bootstrap admin")
	}
	logg.Info(ctx, "bootstrap admin created")
	return nil
}
