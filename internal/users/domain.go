package users

import (
	"time"

	"github.com/vitrine-cms/vitrine/internal/authz"
)

// User represents a back-office account as seen by the management screens.
// Password hashes never leave the repository layer.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        authz.Role `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
