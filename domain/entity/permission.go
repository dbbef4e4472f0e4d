package entity

import (
	"sort"
	"strings"
)

// Permission is a capability a principal may hold independently of its role.
type Permission string

const (
	PermissionRead        Permission = "read"
	PermissionWrite       Permission = "write"
	PermissionDelete      Permission = "delete"
	PermissionManageUsers Permission = "manage_users"
)

// legacy tokens written by the first version of the dashboard
var permissionAliases = map[string]Permission{
	"lecture":              PermissionRead,
	"ecriture":             PermissionWrite,
	"suppression":          PermissionDelete,
	"gestion_utilisateurs": PermissionManageUsers,
}

// ParsePermission accepts both the canonical names and the legacy French tokens.
func ParsePermission(value string) (Permission, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch Permission(v) {
	case PermissionRead, PermissionWrite, PermissionDelete, PermissionManageUsers:
		return Permission(v), true
	}
	p, ok := permissionAliases[v]
	return p, ok
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Slice returns the permissions sorted by name.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Role is the display role of a principal. Roles only grant capabilities
// through the override table of the permission gate.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleBuyer      Role = "Acheteur"
	RoleConsultant Role = "Consultant"
)

// ParseRole matches the stored role names exactly.
func ParseRole(value string) (Role, bool) {
	switch r := Role(strings.TrimSpace(value)); r {
	case RoleAdmin, RoleBuyer, RoleConsultant:
		return r, true
	}
	return "", false
}
