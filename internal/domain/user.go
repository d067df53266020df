package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role is an application role. Only STUDENT and ADMIN exist.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// ParseRole converts boundary input (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	Department   string    `json:"department,omitempty"`
	StudentID    string    `json:"student_id,omitempty"`
	Year         *int      `json:"year,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns an active STUDENT with the given identity fields. ID is typically set by the repository on create.
func NewUser(username, email, fullName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:  username,
		Email:     email,
		FullName:  fullName,
		Role:      RoleStudent,
		Active:    true,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStudent reports whether the user holds the student role.
func (u *User) IsStudent() bool {
	return u != nil && u.Role == RoleStudent
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	UpdateRole(ctx context.Context, id string, role Role, updatedAt time.Time) (*User, error)
	UpdateActive(ctx context.Context, id string, active bool, updatedAt time.Time) (*User, error)
}

// SignUpInput carries the fields accepted when a new account is created.
type SignUpInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Department string
	StudentID  string
	Year       *int
}

// UserService defines the business logic for accounts, authentication and the current user.
type UserService interface {
	SignUp(ctx context.Context, in SignUpInput) (*User, error)
	// CreateAdmin creates an account with the ADMIN role. It is meant for bootstrapping only.
	CreateAdmin(ctx context.Context, in SignUpInput) (*User, error)
	// Authenticate returns ErrInvalidCredentials for an unknown username, a wrong password or an inactive account alike.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, sess Session, user *User) error
	Logout(ctx context.Context, sess Session) error
	// CurrentUser resolves the session's user. A missing or unresolvable id yields (nil, false).
	CurrentUser(ctx context.Context, sess Session) (*User, bool)
	GetByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserRole(ctx context.Context, userID string, role Role, admin *User) (*User, error)
	UpdateUserStatus(ctx context.Context, userID string, active bool, admin *User) (*User, error)
}
