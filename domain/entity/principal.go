package entity

// Principal is an authenticated actor. It is immutable for the lifetime of a
// session: the permission set is copied on construction and only exposed
// through read accessors.
type Principal struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	LastLogin   string `json:"last_login,omitempty"`
	permissions PermissionSet
}

func NewPrincipal(username, fullName, email string, role Role, perms ...Permission) *Principal {
	return &Principal{
		Username:    username,
		FullName:    fullName,
		Email:       email,
		Role:        role,
		permissions: NewPermissionSet(perms...),
	}
}

func (p *Principal) HasPermission(perm Permission) bool {
	if p == nil {
		return false
	}
	return p.permissions.Has(perm)
}

func (p *Principal) Permissions() []Permission {
	if p == nil {
		return nil
	}
	return p.permissions.Slice()
}
