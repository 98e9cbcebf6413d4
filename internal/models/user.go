package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the two roles recognised by the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleParent UserRole = "PADRE"
)

// User represents an account stored in the users table. Parents carry the
// list of their children (student ids); admins leave it empty.
type User struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	Username     *string        `db:"username" json:"username,omitempty"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         UserRole       `db:"role" json:"role"`
	Nombre       string         `db:"nombre" json:"nombre"`
	Apellido     string         `db:"apellido" json:"apellido"`
	Telefono     *string        `db:"telefono" json:"telefono,omitempty"`
	Direccion    *string        `db:"direccion" json:"direccion,omitempty"`
	HijosIDs     pq.StringArray `db:"hijos_ids" json:"hijos_ids"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName joins the personal name fields for display and notifications.
func (u User) FullName() string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}

// UserFilter captures filtering criteria for listing accounts.
type UserFilter struct {
	Role   *UserRole
	Active *bool
	Search string
	Page   int
	Size   int
}
