package domain

import "time"

// Role classifies what an account may do. There are exactly two variants;
// the authorization gate consumes the role, handlers never branch on it.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account is the local mirror of an identity-provider user. Exactly one
// account exists per provider subject ID and per email.
type Account struct {
	ID        int64
	SubjectID string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
