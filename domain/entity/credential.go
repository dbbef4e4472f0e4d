package entity

import (
	"time"
)

// Credential is one record of the credential store. PasswordHash is a bcrypt
// hash and never leaves the store boundary.
type Credential struct {
	Username     string        `json:"username"`
	FullName     string        `json:"full_name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Permissions  PermissionSet `json:"-"`
	PasswordHash string        `json:"-"`
	LastLogin    string        `json:"last_login"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewCredential(username, fullName, email string, role Role, passwordHash string, perms ...Permission) *Credential {
	now := time.Now()
	return &Credential{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		Role:         role,
		Permissions:  NewPermissionSet(perms...),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Principal builds the session principal from the stored record.
func (c *Credential) Principal() *Principal {
	return &Principal{
		Username:    c.Username,
		FullName:    c.FullName,
		Email:       c.Email,
		Role:        c.Role,
		permissions: c.Permissions.Clone(),
		LastLogin:   c.LastLogin,
	}
}

func (c *Credential) UpdatePassword(hash string) {
	c.PasswordHash = hash
	c.UpdatedAt = time.Now()
}
