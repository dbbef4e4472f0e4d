package user_management

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/validator"
)

type CreateUserUseCase struct {
	credentials outbound.CredentialStore
	passwordSvc outbound.PasswordService
	validator   *validator.Validator
	logger      logger.Logger
}

func NewCreateUserUseCase(
	credentials outbound.CredentialStore,
	passwordSvc outbound.PasswordService,
	v *validator.Validator,
	log logger.Logger,
) *CreateUserUseCase {
	return &CreateUserUseCase{
		credentials: credentials,
		passwordSvc: passwordSvc,
		validator:   v,
		logger:      log,
	}
}

// Execute stores the account, replacing an existing one with the same
// username but keeping its creation time and last login.
func (uc *CreateUserUseCase) Execute(ctx context.Context, req inbound.CreateUserRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := uc.validator.Struct(req); err != nil {
		return err
	}

	role, ok := entity.ParseRole(req.Role)
	if !ok {
		return apperr.ErrValidation(fmt.Sprintf("role %q is not allowed", req.Role))
	}
	perms := make([]entity.Permission, 0, len(req.Permissions))
	for _, raw := range req.Permissions {
		p, ok := entity.ParsePermission(raw)
		if !ok {
			return apperr.ErrValidation(fmt.Sprintf("permission %q is not allowed", raw))
		}
		perms = append(perms, p)
	}

	// Hash password
	hashedPassword, err := uc.passwordSvc.HashPassword(req.Password)
	if err != nil {
		return apperr.ErrInternalServerError("failed to hash password", err)
	}

	cred := entity.NewCredential(req.Username, req.FullName, req.Email, role, hashedPassword, perms...)
	existing, err := uc.credentials.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		cred.CreatedAt = existing.CreatedAt
		cred.LastLogin = existing.LastLogin
		cred.UpdatedAt = time.Now()
	case !errors.Is(err, outbound.ErrCredentialNotFound):
		return apperr.ErrInternalServerError("failed to look up user", fmt.Errorf("find credential: %w", err))
	}

	if err := uc.credentials.Save(ctx, cred); err != nil {
		return apperr.ErrPersistence("save credential", err)
	}

	uc.logger.Info(ctx, "User account saved", map[string]interface{}{
		"username": cred.Username,
		"role":     string(cred.Role),
		"replaced": existing != nil,
	})
	return nil
}
