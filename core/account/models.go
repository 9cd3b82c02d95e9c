package account

import (
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/irshadhq/irshad/core/auth"
)

var (
	// errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrRoleNotFound    = errors.New("role assignment not found")
	ErrUnknownRole     = errors.New("unknown role value")

	// ErrAlreadyExists signals a duplicate-key write. It is a benign outcome
	// of two bootstraps racing and must never be treated as fatal.
	ErrAlreadyExists = errors.New("row already exists")
)

// Role is the closed set of dashboard roles. Values read from the store are
// funneled through ParseRole so an open string never propagates.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return r, nil
	}
	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Profile is the persisted record backing a dashboard user, keyed by the
// provider identity's ID. Created exactly once, at first bootstrap.
type Profile struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	FullName  string      `json:"full_name"`
	Phone     null.String `json:"phone"`
	AvatarURL null.String `json:"avatar_url"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// RoleAssignment maps an identity to exactly one Role. At most one row per
// user_id is authoritative; reads take the first match.
type RoleAssignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Member is the admin directory row: a profile joined with its role.
type Member struct {
	Profile
	Role   Role   `json:"role"`
	RoleID string `json:"role_id"`
}

// UpdateProfile defines what information may be provided to modify a Profile.
type UpdateProfile struct {
	FullName  string      `json:"full_name"`
	Phone     null.String `json:"phone"`
	AvatarURL null.String `json:"avatar_url"`
}

// DefaultFullName derives the bootstrap display name for an identity:
// metadata full_name, else the local part of the email, else "User".
func DefaultFullName(ident auth.Identity) string {
	if name := strings.TrimSpace(ident.Metadata[auth.MetaFullName]); name != "" {
		return name
	}
	if ident.Email != "" {
		if at := strings.Index(ident.Email, "@"); at > 0 {
			return ident.Email[:at]
		}
		return ident.Email
	}
	return "User"
}

// DefaultPhone derives the bootstrap phone: metadata phone or null.
func DefaultPhone(ident auth.Identity) null.String {
	if phone := strings.TrimSpace(ident.Metadata[auth.MetaPhone]); phone != "" {
		return null.StringFrom(phone)
	}
	return null.String{}
}
