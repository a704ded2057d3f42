package auth

import (
	"time"

	"github.com/vitrine-cms/vitrine/internal/authz"
)

// User represents an authenticated user account. PasswordHash is empty for
// accounts created through a federated login that never set a password.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         authz.Role
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a local credential is stored.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}
