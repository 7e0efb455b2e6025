package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type assignmentRepository interface {
	Insert(ctx context.Context, username, className, department string) (*models.AssignmentResult, error)
	List(ctx context.Context, filter repository.AssignmentFilter) ([]models.ClassRepAssignment, error)
	FindByID(ctx context.Context, id int64) (*models.ClassRepAssignment, error)
	Delete(ctx context.Context, id int64) error
}

type repDirectory interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type entityLookup interface {
	Exists(ctx context.Context, kind models.EntityKind, name, department string) (bool, error)
}

// AssignmentService links class reps to the classes they report for.
type AssignmentService struct {
	repo      assignmentRepository
	users     repDirectory
	entities  entityLookup
	access    *AccessService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, users repDirectory, entities entityLookup, access *AccessService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, users: users, entities: entities, access: access, validator: validate, logger: logger}
}

// Assign links a class rep to an existing class of the target department.
func (s *AssignmentService) Assign(ctx context.Context, session *models.Session, req models.AssignClassRepRequest) (*models.AssignmentResult, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() {
		return nil, permissionError("only administrators can assign class representatives")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	username := strings.TrimSpace(req.Username)
	className := normalizeName(req.ClassName)
	if username == "" || className == "" {
		return nil, validationError("username and class are required")
	}
	department, err := scope.WriteDepartment(req.Department)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireDepartment(ctx, department); err != nil {
		return nil, err
	}

	rep, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("class representative not found")
		}
		return nil, storeError(err, "failed to load class representative")
	}
	if rep.Role != models.RoleClassRep {
		return nil, validationError(fmt.Sprintf("%s is not a class representative", username))
	}
	if scope.Role == models.RoleHOD && !scope.CanManage(rep.Department()) {
		return nil, permissionError("class representative belongs to another department")
	}

	exists, err := s.entities.Exists(ctx, models.EntityClass, className, department)
	if err != nil {
		return nil, storeError(err, "failed to check class")
	}
	if !exists {
		return nil, validationError(fmt.Sprintf("class %s does not exist in %s", className, department))
	}

	result, err := s.repo.Insert(ctx, username, className, department)
	if err != nil {
		return nil, storeError(err, "failed to assign class representative")
	}
	s.logger.Info("class rep assigned",
		zap.String("actor", scope.Username),
		zap.String("username", username),
		zap.String("class", className),
		zap.String("department", department),
		zap.String("outcome", string(result.Outcome)),
	)
	return result, nil
}

// List returns assignments in the actor's scope. Class reps see only their own.
func (s *AssignmentService) List(ctx context.Context, session *models.Session, department string) ([]models.ClassRepAssignment, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}

	var filter repository.AssignmentFilter
	if scope.Role == models.RoleClassRep {
		filter.Username = scope.Username
	} else {
		scoped, err := scope.ReadDepartment(department)
		if err != nil {
			return nil, err
		}
		filter.Department = scoped
	}

	assignments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list assignments")
	}
	return assignments, nil
}

// Delete removes an assignment in the actor's department.
func (s *AssignmentService) Delete(ctx context.Context, session *models.Session, id int64) error {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() {
		return permissionError("only administrators can remove assignments")
	}

	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("assignment not found")
		}
		return storeError(err, "failed to load assignment")
	}
	if !scope.CanManage(assignment.DepartmentCode) {
		return permissionError(fmt.Sprintf("assignment belongs to department %s", assignment.DepartmentCode))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("assignment not found")
		}
		return storeError(err, "failed to delete assignment")
	}
	s.logger.Info("class rep unassigned", zap.String("actor", scope.Username), zap.String("username", assignment.Username), zap.String("class", assignment.ClassName))
	return nil
}

// Reps lists the class representative usernames the actor may assign.
func (s *AssignmentService) Reps(ctx context.Context, session *models.Session) ([]string, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() {
		return nil, permissionError("only administrators can list class representatives")
	}

	role := models.RoleClassRep
	users, err := s.users.List(ctx, models.UserFilter{Role: &role, Department: scope.Department})
	if err != nil {
		return nil, storeError(err, "failed to list class representatives")
	}
	usernames := make([]string, 0, len(users))
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}
	return usernames, nil
}
