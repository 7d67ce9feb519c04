package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account role
type Role string

const (
	RoleArtist  Role = "artist"
	RoleBuyer   Role = "buyer"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// IsValidRole reports whether a role can be self-assigned at signup.
// Admin accounts are provisioned out of band.
func IsValidRole(r string) bool {
	switch Role(r) {
	case RoleArtist, RoleBuyer, RolePartner:
		return true
	}
	return false
}

// User is an account record
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	DisplayName  string    `db:"display_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
