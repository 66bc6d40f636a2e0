package entity

import (
	"time"
)

// Role is the closed set of account roles. Anything outside the set is
// treated as RoleUnknown and gets no access.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleJury        Role = "jury"
	RoleAdmin       Role = "admin"
	RoleUnknown     Role = ""
)

// ParseRole maps a stored string onto the closed role set.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleParticipant, RoleJury, RoleAdmin:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// UserStatus is the account lifecycle state. Unknown values must be
// treated as the most restrictive outcome (not activated).
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusBanned   UserStatus = "banned"
	StatusInactive UserStatus = "inactive"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never the plain credential.
//
// At most one verification token and one reset token are live at a
// time; consuming a token clears the value and its issued-at stamp.
type User struct {
	ID       string
	Email    string
	Password string
	Name     string
	Surname  string
	Age      int
	Bio      string
	Role     Role
	Status   UserStatus

	VerificationToken    string
	VerificationIssuedAt *time.Time
	ResetToken           string
	ResetIssuedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
