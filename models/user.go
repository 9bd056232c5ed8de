package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleCoach  UserRole = "coach"
	RoleViewer UserRole = "viewer"
)

type User struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleViewer:
		return true
	}
	return false
}

// CanWrite reports whether the role may change games and match events.
func (r UserRole) CanWrite() bool {
	return r == RoleAdmin || r == RoleCoach
}
