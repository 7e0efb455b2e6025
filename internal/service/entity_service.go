package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type entityRepository interface {
	Insert(ctx context.Context, kind models.EntityKind, name, department string) (*models.EntityResult, error)
	List(ctx context.Context, kind models.EntityKind, department string) ([]models.Entity, error)
	FindByID(ctx context.Context, kind models.EntityKind, id int64) (*models.Entity, error)
	Delete(ctx context.Context, kind models.EntityKind, id int64) error
}

// EntityService manages trainers, classes and units for a department.
type EntityService struct {
	repo      entityRepository
	access    *AccessService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEntityService constructs an EntityService.
func NewEntityService(repo entityRepository, access *AccessService, validate *validator.Validate, logger *zap.Logger) *EntityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EntityService{repo: repo, access: access, validator: validate, logger: logger}
}

// Add inserts a trainer, class or unit. An existing (name, department) pair is
// reported as already_exists rather than an error.
func (s *EntityService) Add(ctx context.Context, session *models.Session, kind models.EntityKind, req models.CreateEntityRequest) (*models.EntityResult, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported entity kind %q", kind))
	}

	name := normalizeName(req.Name)
	if name == "" {
		return nil, validationError(kind.Config().Label + " name is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+kind.Config().Label+" payload")
	}
	department, err := scope.WriteDepartment(req.Department)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireDepartment(ctx, department); err != nil {
		return nil, err
	}

	result, err := s.insert(ctx, kind, name, department)
	if err != nil {
		return nil, err
	}
	s.logger.Info("entity added",
		zap.String("actor", scope.Username),
		zap.String("kind", string(kind)),
		zap.String("name", name),
		zap.String("department", department),
		zap.String("outcome", string(result.Outcome)),
	)
	return result, nil
}

func (s *EntityService) insert(ctx context.Context, kind models.EntityKind, name, department string) (*models.EntityResult, error) {
	result, err := s.repo.Insert(ctx, kind, name, department)
	if err != nil {
		return nil, storeError(err, "failed to add "+kind.Config().Label)
	}
	return result, nil
}

// List returns entities visible to the actor. Unrestricted actors may filter by
// department and get rows ordered by department then name.
func (s *EntityService) List(ctx context.Context, session *models.Session, kind models.EntityKind, department string) ([]models.Entity, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported entity kind %q", kind))
	}
	scoped, err := scope.ReadDepartment(department)
	if err != nil {
		return nil, err
	}

	entities, err := s.repo.List(ctx, kind, scoped)
	if err != nil {
		return nil, storeError(err, "failed to list "+kind.Config().Table)
	}
	return entities, nil
}

// Delete removes an entity owned by the actor's department. Attendance history is kept.
func (s *EntityService) Delete(ctx context.Context, session *models.Session, kind models.EntityKind, id int64) error {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return err
	}
	if !kind.Valid() {
		return validationError(fmt.Sprintf("unsupported entity kind %q", kind))
	}
	if !scope.IsAdmin() {
		return permissionError("class representatives have read-only access")
	}

	label := kind.Config().Label
	entity, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError(label + " not found")
		}
		return storeError(err, "failed to load "+label)
	}
	if !scope.CanManage(entity.DepartmentCode) {
		return permissionError(fmt.Sprintf("%s belongs to department %s", label, entity.DepartmentCode))
	}

	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError(label + " not found")
		}
		return storeError(err, "failed to delete "+label)
	}

	s.logger.Info("entity deleted",
		zap.String("actor", scope.Username),
		zap.String("kind", string(kind)),
		zap.String("name", entity.Name),
		zap.String("department", entity.DepartmentCode),
	)
	return nil
}
