package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/importer"
)

const (
	importColumnName       = "Name"
	importColumnDepartment = "Department"
)

// ImportService bulk loads trainers, classes or units from CSV or XLSX files.
type ImportService struct {
	entities *EntityService
	access   *AccessService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(entities *EntityService, access *AccessService, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{entities: entities, access: access, metrics: metrics, logger: logger}
}

// Import inserts each row independently. Malformed rows, rows with a blank name, an unknown department,
// a department outside the actor's scope, or a failed insert are skipped with a reason.
// An unreachable store aborts the import.
func (s *ImportService) Import(ctx context.Context, session *models.Session, kind models.EntityKind, filename string, src io.Reader) (*models.ImportResult, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported entity kind %q", kind))
	}
	if !scope.IsAdmin() {
		return nil, permissionError("class representatives have read-only access")
	}

	rows, err := importer.Read(filename, src, importColumnName, importColumnDepartment)
	if err != nil {
		return nil, importReadError(err)
	}

	departments, err := s.access.Departments(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		known[d.Code] = struct{}{}
	}

	result := &models.ImportResult{Kind: kind, Skipped: []models.ImportSkip{}}
	for _, row := range rows {
		if row.Malformed {
			result.Skipped = append(result.Skipped, models.ImportSkip{Row: row.Line, Reason: "malformed row"})
			continue
		}
		name := normalizeName(row.Get(importColumnName))
		department := normalizeDepartment(row.Get(importColumnDepartment))

		skip := func(reason string) {
			result.Skipped = append(result.Skipped, models.ImportSkip{Row: row.Line, Name: name, Reason: reason})
		}
		switch {
		case name == "":
			skip("name is blank")
			continue
		case department == "":
			skip("department is blank")
			continue
		}
		if _, ok := known[department]; !ok {
			skip(fmt.Sprintf("department %s does not exist", department))
			continue
		}
		if !scope.CanManage(department) {
			skip(fmt.Sprintf("department %s is outside your scope", department))
			continue
		}

		outcome, err := s.entities.insert(ctx, kind, name, department)
		if err != nil {
			if errors.Is(err, appErrors.ErrStorageUnavailable) {
				return nil, err
			}
			s.logger.Warn("import row failed", zap.Int("row", row.Line), zap.String("name", name), zap.Error(err))
			skip("could not be stored")
			continue
		}
		if outcome.Outcome == models.OutcomeCreated {
			result.Imported++
		} else {
			result.AlreadyExisting++
		}
	}

	s.metrics.RecordImportRows(string(kind), "imported", result.Imported)
	s.metrics.RecordImportRows(string(kind), "existing", result.AlreadyExisting)
	s.metrics.RecordImportRows(string(kind), "skipped", len(result.Skipped))
	s.logger.Info("bulk import finished",
		zap.String("actor", scope.Username),
		zap.String("kind", string(kind)),
		zap.String("file", filename),
		zap.Int("imported", result.Imported),
		zap.Int("already_existing", result.AlreadyExisting),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func importReadError(err error) error {
	var missing *importer.MissingColumnsError
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return validationError("unsupported file type, upload a .csv or .xlsx file")
	case errors.As(err, &missing):
		return validationError("file is missing required columns: " + strings.Join(missing.Columns, ", "))
	default:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not read import file")
	}
}
