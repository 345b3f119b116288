package model

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	PasswordHash *string   `db:"password_hash"` // Nullable for OAuth-only users
	Avatar       *Asset    `db:"avatar"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin reports whether u may mutate owned content. A nil user is never admin.
func IsAdmin(u *User) bool {
	return u != nil && u.Role == RoleAdmin
}

// IsOwner reports whether u is the owner recorded on a row.
func IsOwner(u *User, ownerID string) bool {
	return u != nil && ownerID != "" && u.ID == ownerID
}

// Identity is the normalized projection of a signed-in user.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   *Asset `json:"avatar,omitempty"`
}

func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Name:     u.Name,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
