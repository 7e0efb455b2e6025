package models

import (
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleHOD        UserRole = "HOD"
	RoleClassRep   UserRole = "CLASS_REP"
)

// DepartmentAll is the scope label presented for unrestricted users.
const DepartmentAll = "ALL"

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleHOD, RoleClassRep:
		return true
	default:
		return false
	}
}

// ParseUserRole normalises raw input into a UserRole.
func ParseUserRole(raw string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// User represents an application user stored in the users table.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           UserRole  `db:"role" json:"role"`
	DepartmentCode *string   `db:"department_code" json:"department_code,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Department returns the department scope label, ALL for unscoped users.
func (u User) Department() string {
	if u.DepartmentCode == nil || *u.DepartmentCode == "" {
		return DepartmentAll
	}
	return *u.DepartmentCode
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Department string
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
