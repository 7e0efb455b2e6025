package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type sessionRevoker interface {
	RevokeByUser(ctx context.Context, userID int64, revokedAt time.Time) error
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	sessions  sessionRevoker
	access    *AccessService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, sessions sessionRevoker, access *AccessService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, sessions: sessions, access: access, validator: validate, logger: logger}
}

// Create adds a user. Heads of department may only create class reps in their own department.
func (s *UserService) Create(ctx context.Context, session *models.Session, req models.CreateUserRequest) (*models.User, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !scope.IsAdmin() {
		return nil, permissionError("only administrators can create users")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, validationError("username and password are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	role, ok := models.ParseUserRole(req.Role)
	if !ok {
		return nil, validationError("role must be one of SUPER_ADMIN, HOD, CLASS_REP")
	}
	if !scope.CanCreateRole(role) {
		return nil, permissionError("you may only create class representatives")
	}

	user := &models.User{Username: username, Role: role}
	if role != models.RoleSuperAdmin {
		department, err := scope.WriteDepartment(req.Department)
		if err != nil {
			return nil, err
		}
		if err := s.access.RequireDepartment(ctx, department); err != nil {
			return nil, err
		}
		user.DepartmentCode = &department
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "username already exists")
		}
		return nil, storeError(err, "failed to create user")
	}

	s.logger.Info("user created",
		zap.String("actor", scope.Username),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("department", user.Department()),
	)
	return user, nil
}

// List returns the users visible to the actor.
func (s *UserService) List(ctx context.Context, session *models.Session) ([]models.User, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}

	var filter models.UserFilter
	switch scope.Role {
	case models.RoleSuperAdmin:
	case models.RoleHOD:
		role := models.RoleClassRep
		filter.Role = &role
		filter.Department = scope.Department
	default:
		return nil, permissionError("only administrators can list users")
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list users")
	}
	return users, nil
}

// Delete removes a user and ends their sessions. Actors cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, session *models.Session, id int64) error {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() {
		return permissionError("only administrators can delete users")
	}
	if id == scope.UserID {
		return validationError("cannot delete your own account")
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("user not found")
		}
		return storeError(err, "failed to load user")
	}
	if scope.Role == models.RoleHOD && (target.Role != models.RoleClassRep || !scope.CanManage(target.Department())) {
		return permissionError("you may only delete class representatives of your department")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("user not found")
		}
		return storeError(err, "failed to delete user")
	}

	if err := s.sessions.RevokeByUser(ctx, id, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke sessions of deleted user", zap.Int64("user_id", id), zap.Error(err))
	}

	s.logger.Info("user deleted", zap.String("actor", scope.Username), zap.String("username", target.Username))
	return nil
}

// EnsureSuperAdmin seeds the initial administrator when no SUPER_ADMIN exists.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.repo.CountByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return false, storeError(err, "failed to count administrators")
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{Username: username, PasswordHash: string(hash), Role: models.RoleSuperAdmin}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return false, appErrors.Clone(appErrors.ErrDuplicate, "seed username is taken by a non-admin user")
		}
		return false, storeError(err, "failed to seed administrator")
	}

	s.logger.Info("seeded super admin", zap.String("username", username))
	return true, nil
}
