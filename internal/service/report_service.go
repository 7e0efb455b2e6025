package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type lessonRepository interface {
	Create(ctx context.Context, record *models.LessonAttendanceRecord) error
	List(ctx context.Context, filter models.ReportFilter) ([]models.LessonAttendanceRecord, int, error)
	DeleteByIDs(ctx context.Context, ids []int64, guard func([]models.LessonAttendanceRecord) error) (int, error)
}

type referenceLookup interface {
	Exists(ctx context.Context, kind models.EntityKind, name, department string) (bool, error)
	Names(ctx context.Context, kind models.EntityKind, department string) ([]string, error)
}

type analyticsInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// ReportListQuery filters the recent reports listing.
type ReportListQuery struct {
	Department string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// ReportService validates and stores lesson attendance reports.
type ReportService struct {
	lessons   lessonRepository
	refs      referenceLookup
	access    *AccessService
	analytics analyticsInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(lessons lessonRepository, refs referenceLookup, access *AccessService, analytics analyticsInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{lessons: lessons, refs: refs, access: access, analytics: analytics, metrics: metrics, validator: validate, logger: logger}
}

// Submit records the outcome of one lesson slot. A slot already reported is
// rejected with a duplicate error and never overwritten.
func (s *ReportService) Submit(ctx context.Context, session *models.Session, req models.SubmitReportRequest) (*models.LessonAttendanceRecord, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}

	record, err := s.buildRecord(req)
	if err != nil {
		return nil, s.rejected(err)
	}

	department, err := s.reportDepartment(scope, req.Department, record.ClassName)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.requireReference(ctx, models.EntityClass, record.ClassName, department); err != nil {
		return nil, s.rejected(err)
	}
	if err := s.requireReference(ctx, models.EntityTrainer, record.TrainerName, department); err != nil {
		return nil, s.rejected(err)
	}
	if err := s.requireReference(ctx, models.EntityUnit, record.UnitName, department); err != nil {
		return nil, s.rejected(err)
	}

	record.DepartmentCode = department
	record.ReportedBy = scope.Username
	if err := s.lessons.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			s.metrics.RecordReport("duplicate")
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "this lesson slot has already been reported")
		}
		return nil, s.rejected(storeError(err, "failed to submit report"))
	}

	s.metrics.RecordReport("created")
	s.invalidateAnalytics(ctx)
	s.logger.Info("lesson reported",
		zap.String("actor", scope.Username),
		zap.String("class", record.ClassName),
		zap.String("unit", record.UnitName),
		zap.String("trainer", record.TrainerName),
		zap.String("slot", record.TimeSlot),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

// rejected counts submissions refused for client-side reasons. Store failures are not counted.
func (s *ReportService) rejected(err error) error {
	if appErrors.FromError(err).Status < http.StatusInternalServerError {
		s.metrics.RecordReport("rejected")
	}
	return err
}

func (s *ReportService) buildRecord(req models.SubmitReportRequest) (*models.LessonAttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, class, unit, trainer, time slot and status are required")
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, validationError("date must be formatted as YYYY-MM-DD")
	}

	record := &models.LessonAttendanceRecord{
		LessonDate:  date,
		ClassName:   normalizeName(req.ClassName),
		UnitName:    normalizeName(req.UnitName),
		TrainerName: normalizeName(req.TrainerName),
		TimeSlot:    strings.TrimSpace(req.TimeSlot),
		Status:      models.LessonStatus(strings.TrimSpace(req.Status)),
	}
	if record.ClassName == "" || record.UnitName == "" || record.TrainerName == "" {
		return nil, validationError("class, unit and trainer are required")
	}
	if !models.ValidTimeSlot(record.TimeSlot) {
		return nil, validationError(fmt.Sprintf("time slot must be one of %s", strings.Join(models.TimeSlots, ", ")))
	}
	if !record.Status.Valid() {
		return nil, validationError("status must be Taught or Not Taught")
	}

	if record.Status == models.LessonNotTaught {
		reason := strings.TrimSpace(req.Reason)
		if !models.ValidMissedReason(reason) {
			return nil, validationError(fmt.Sprintf("reason must be one of %s", strings.Join(models.MissedReasons, ", ")))
		}
		record.Reason = &reason
	}
	if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
		record.Remarks = &remarks
	}
	return record, nil
}

// reportDepartment picks the department a report is filed under. Class reps report
// only for their assigned classes and always under their assignment department.
func (s *ReportService) reportDepartment(scope *Scope, requested, className string) (string, error) {
	if scope.Role != models.RoleClassRep {
		return scope.WriteDepartment(requested)
	}
	if scope.Department == "" {
		return "", permissionError("you are not assigned to any class")
	}
	if !scope.CanReportClass(className) {
		return "", permissionError(fmt.Sprintf("class %s is not assigned to you", className))
	}
	return scope.Department, nil
}

func (s *ReportService) requireReference(ctx context.Context, kind models.EntityKind, name, department string) error {
	exists, err := s.refs.Exists(ctx, kind, name, department)
	if err != nil {
		return storeError(err, "failed to check "+kind.Config().Label)
	}
	if !exists {
		return validationError(fmt.Sprintf("%s %s does not exist in %s", kind.Config().Label, name, department))
	}
	return nil
}

// List returns recent reports newest first. Class reps see only their own submissions.
func (s *ReportService) List(ctx context.Context, session *models.Session, query ReportListQuery) ([]models.LessonAttendanceRecord, *models.Pagination, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	filter := models.ReportFilter{
		DateFrom: query.From,
		DateTo:   query.To,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if scope.Role == models.RoleClassRep {
		filter.ReportedBy = scope.Username
	} else {
		department, err := scope.ReadDepartment(query.Department)
		if err != nil {
			return nil, nil, err
		}
		filter.Department = department
	}

	records, total, err := s.lessons.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list reports")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return records, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// DeleteMany removes reports atomically. Any id outside a head of department's scope
// or missing from the store aborts the whole deletion.
func (s *ReportService) DeleteMany(ctx context.Context, session *models.Session, ids []int64) (int, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return 0, err
	}
	if !scope.IsAdmin() {
		return 0, permissionError("only administrators can delete reports")
	}

	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return 0, validationError("select at least one report")
	}

	deleted, err := s.lessons.DeleteByIDs(ctx, unique, func(rows []models.LessonAttendanceRecord) error {
		found := make(map[int64]struct{}, len(rows))
		for _, row := range rows {
			if !scope.CanManage(row.DepartmentCode) {
				return permissionError(fmt.Sprintf("report %d belongs to department %s", row.ID, row.DepartmentCode))
			}
			found[row.ID] = struct{}{}
		}
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				return notFoundError(fmt.Sprintf("report %d not found", id))
			}
		}
		return nil
	})
	if err != nil {
		return 0, storeError(err, "failed to delete reports")
	}

	s.invalidateAnalytics(ctx)
	s.logger.Info("reports deleted", zap.String("actor", scope.Username), zap.Int("count", deleted))
	return deleted, nil
}

// Options returns the choices the reporting form offers in the actor's department.
func (s *ReportService) Options(ctx context.Context, session *models.Session, department string) (*models.ReportOptions, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	scoped, err := scope.ReadDepartment(department)
	if err != nil {
		return nil, err
	}

	options := &models.ReportOptions{
		Department: departmentLabel(scoped),
		Classes:    []string{},
		Units:      []string{},
		Trainers:   []string{},
		TimeSlots:  models.TimeSlots,
		Statuses:   models.LessonStatuses,
		Reasons:    models.MissedReasons,
	}
	if scoped == "" {
		return options, nil
	}

	if scope.Role == models.RoleClassRep {
		options.Classes = append(options.Classes, scope.Classes...)
	} else if options.Classes, err = s.names(ctx, models.EntityClass, scoped); err != nil {
		return nil, err
	}
	if options.Units, err = s.names(ctx, models.EntityUnit, scoped); err != nil {
		return nil, err
	}
	if options.Trainers, err = s.names(ctx, models.EntityTrainer, scoped); err != nil {
		return nil, err
	}
	return options, nil
}

func (s *ReportService) names(ctx context.Context, kind models.EntityKind, department string) ([]string, error) {
	names, err := s.refs.Names(ctx, kind, department)
	if err != nil {
		return nil, storeError(err, "failed to list "+kind.Config().Table)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *ReportService) invalidateAnalytics(ctx context.Context) {
	if s.analytics != nil {
		s.analytics.InvalidateCache(ctx)
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
