package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type assignmentLookup interface {
	ListByUsername(ctx context.Context, username string) ([]models.ClassRepAssignment, error)
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	Exists(ctx context.Context, code string) (bool, error)
}

// Scope is the resolved read/write reach of an authenticated actor.
type Scope struct {
	UserID   int64
	Username string
	Role     models.UserRole
	// Department is empty for unrestricted actors.
	Department string
	// Classes is the assignment set of a class rep.
	Classes []string
}

// Unrestricted reports whether the actor spans every department.
func (s *Scope) Unrestricted() bool {
	return s.Role == models.RoleSuperAdmin
}

// IsAdmin reports whether the actor may manage reference data.
func (s *Scope) IsAdmin() bool {
	return s.Role == models.RoleSuperAdmin || s.Role == models.RoleHOD
}

// Label returns the department scope for display, ALL when unrestricted.
func (s *Scope) Label() string {
	if s.Department == "" {
		return models.DepartmentAll
	}
	return s.Department
}

// CanRead reports whether rows of department may be read.
func (s *Scope) CanRead(department string) bool {
	if s.Unrestricted() {
		return true
	}
	return s.Department != "" && s.Department == department
}

// CanManage reports whether rows of department may be created or deleted.
func (s *Scope) CanManage(department string) bool {
	switch s.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleHOD:
		return s.Department == department
	default:
		return false
	}
}

// CanReportClass reports whether the actor may submit lessons for className.
func (s *Scope) CanReportClass(className string) bool {
	if s.Role != models.RoleClassRep {
		return s.IsAdmin()
	}
	for _, c := range s.Classes {
		if c == className {
			return true
		}
	}
	return false
}

// CanCreateRole reports whether the actor may create users holding role.
func (s *Scope) CanCreateRole(role models.UserRole) bool {
	switch s.Role {
	case models.RoleSuperAdmin:
		return role.Valid()
	case models.RoleHOD:
		return role == models.RoleClassRep
	default:
		return false
	}
}

// WriteDepartment resolves the department a write targets. HODs default to their own
// department and may not name another one; unrestricted actors must name one.
func (s *Scope) WriteDepartment(requested string) (string, error) {
	requested = normalizeDepartment(requested)
	switch s.Role {
	case models.RoleSuperAdmin:
		if requested == "" || requested == models.DepartmentAll {
			return "", validationError("department is required")
		}
		return requested, nil
	case models.RoleHOD:
		if requested == "" || requested == s.Department {
			return s.Department, nil
		}
		return "", permissionError(fmt.Sprintf("department %s is outside your scope", requested))
	default:
		return "", permissionError("class representatives have read-only access")
	}
}

// ReadDepartment resolves the department a read is narrowed to. Empty means every department.
func (s *Scope) ReadDepartment(requested string) (string, error) {
	requested = normalizeDepartment(requested)
	if s.Unrestricted() {
		if requested == models.DepartmentAll {
			return "", nil
		}
		return requested, nil
	}
	if s.Department == "" {
		return "", permissionError("you are not assigned to any class")
	}
	if requested == "" || requested == models.DepartmentAll || requested == s.Department {
		return s.Department, nil
	}
	return "", permissionError(fmt.Sprintf("department %s is outside your scope", requested))
}

// AccessService resolves sessions into scopes and validates department references.
type AccessService struct {
	assignments assignmentLookup
	departments departmentRepository
	logger      *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(assignments assignmentLookup, departments departmentRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{assignments: assignments, departments: departments, logger: logger}
}

// ResolveScope derives the actor's scope. Class reps take department and classes from
// their assignments at request time, using the department of their first assignment.
func (s *AccessService) ResolveScope(ctx context.Context, session *models.Session) (*Scope, error) {
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}

	scope := &Scope{UserID: session.UserID, Username: session.Username, Role: session.Role}
	switch session.Role {
	case models.RoleSuperAdmin:
		return scope, nil
	case models.RoleHOD:
		department := normalizeDepartment(session.Department)
		if department == "" || department == models.DepartmentAll {
			return nil, permissionError("head of department has no department")
		}
		scope.Department = department
		return scope, nil
	case models.RoleClassRep:
		assignments, err := s.assignments.ListByUsername(ctx, session.Username)
		if err != nil {
			return nil, storeError(err, "failed to load class assignments")
		}
		if len(assignments) == 0 {
			return scope, nil
		}
		scope.Department = assignments[0].DepartmentCode
		for _, a := range assignments {
			if a.DepartmentCode == scope.Department {
				scope.Classes = append(scope.Classes, a.ClassName)
			}
		}
		return scope, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role")
	}
}

// RequireDepartment fails with a validation error unless code is a seeded department.
func (s *AccessService) RequireDepartment(ctx context.Context, code string) error {
	exists, err := s.departments.Exists(ctx, code)
	if err != nil {
		return storeError(err, "failed to check department")
	}
	if !exists {
		return validationError(fmt.Sprintf("department %s does not exist", code))
	}
	return nil
}

// Departments lists the department reference set.
func (s *AccessService) Departments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list departments")
	}
	return departments, nil
}

func normalizeDepartment(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func normalizeName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
