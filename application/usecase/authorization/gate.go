package authorization

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

// RoleOverrides grants extra permissions by role on top of a principal's own
// set. Admin may always delete.
var RoleOverrides = map[entity.Role]entity.PermissionSet{
	entity.RoleAdmin: entity.NewPermissionSet(entity.PermissionDelete),
}

// Gate decides whether a principal may perform an action.
type Gate struct {
	overrides map[entity.Role]entity.PermissionSet
	logger    logger.Logger
}

func NewGate(log logger.Logger) *Gate {
	return NewGateWithOverrides(RoleOverrides, log)
}

func NewGateWithOverrides(overrides map[entity.Role]entity.PermissionSet, log logger.Logger) *Gate {
	copied := make(map[entity.Role]entity.PermissionSet, len(overrides))
	for role, set := range overrides {
		copied[role] = set.Clone()
	}
	return &Gate{overrides: copied, logger: log}
}

// Authorize reports whether principal holds perm, directly or through the
// override table. A nil principal is never authorized.
func (g *Gate) Authorize(principal *entity.Principal, perm entity.Permission) bool {
	if principal == nil {
		return false
	}
	if principal.HasPermission(perm) {
		return true
	}
	return g.overrides[principal.Role].Has(perm)
}

// Require returns a Forbidden error when Authorize denies.
func (g *Gate) Require(ctx context.Context, principal *entity.Principal, perm entity.Permission) error {
	if g.Authorize(principal, perm) {
		return nil
	}
	username := ""
	if principal != nil {
		username = principal.Username
	}
	logger.LogSecurityEvent(ctx, g.logger, "permission_denied", "MEDIUM", map[string]interface{}{
		"username":   username,
		"permission": string(perm),
	})
	return apperr.ErrForbidden(username, string(perm))
}
