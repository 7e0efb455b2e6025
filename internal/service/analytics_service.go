package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

const analyticsCachePattern = "analytics:*"

type attendanceRecordSource interface {
	Records(ctx context.Context, filter models.AttendanceFilter) ([]models.LessonAttendanceRecord, error)
}

// AnalyticsService resolves attendance queries against the actor's scope and aggregates them, with cache integration.
type AnalyticsService struct {
	repo    attendanceRecordSource
	access  *AccessService
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo attendanceRecordSource, access *AccessService, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:    repo,
		access:  access,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ResolvedQuery is an attendance query narrowed to the actor's scope with its period resolved.
type ResolvedQuery struct {
	Filter      models.AttendanceFilter
	Period      models.PeriodKind
	Granularity models.Granularity
}

// Query aggregates attendance for the filters. The boolean reports whether the result came from cache.
func (s *AnalyticsService) Query(ctx context.Context, session *models.Session, query models.AttendanceQuery) (*models.AggregateResult, bool, error) {
	resolved, err := s.Resolve(ctx, session, query)
	if err != nil {
		return nil, false, err
	}

	cacheKey := attendanceCacheKey(resolved)
	var cached models.AggregateResult
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	records, err := s.fetch(ctx, resolved.Filter)
	if err != nil {
		return nil, false, err
	}

	result := Aggregate(records, resolved.Granularity)
	result.Department = departmentLabel(resolved.Filter.Department)
	result.Period = resolved.Period
	result.Range = resolved.Filter.Range
	result.GeneratedAt = s.now()

	if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
		s.logger.Warn("cache attendance analytics", zap.Error(err))
	}
	return &result, false, nil
}

// Records returns the raw rows behind a query, oldest lesson first.
func (s *AnalyticsService) Records(ctx context.Context, session *models.Session, query models.AttendanceQuery) ([]models.LessonAttendanceRecord, *ResolvedQuery, error) {
	resolved, err := s.Resolve(ctx, session, query)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.fetch(ctx, resolved.Filter)
	if err != nil {
		return nil, nil, err
	}
	return records, resolved, nil
}

// Resolve validates the query and narrows it to the actor's scope. Class reps are
// limited to their assigned classes.
func (s *AnalyticsService) Resolve(ctx context.Context, session *models.Session, query models.AttendanceQuery) (*ResolvedQuery, error) {
	scope, err := s.access.ResolveScope(ctx, session)
	if err != nil {
		return nil, err
	}
	department, err := scope.ReadDepartment(query.Department)
	if err != nil {
		return nil, err
	}

	period := query.Period
	if period == "" {
		period = models.PeriodAll
	}
	if !period.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported period %q", period))
	}
	granularity := query.Granularity
	if granularity == "" {
		granularity = models.GranularityDaily
	}
	if !granularity.Valid() {
		return nil, validationError(fmt.Sprintf("unsupported granularity %q", granularity))
	}

	dateRange, err := ResolvePeriod(period, s.now(), query.Year, query.From, query.To)
	if err != nil {
		return nil, err
	}

	classes := normalizeNames(query.Classes)
	if scope.Role == models.RoleClassRep {
		if len(classes) == 0 {
			classes = normalizeNames(scope.Classes)
		}
		for _, c := range classes {
			if !scope.CanReportClass(c) {
				return nil, permissionError(fmt.Sprintf("class %s is not assigned to you", c))
			}
		}
	}

	return &ResolvedQuery{
		Filter: models.AttendanceFilter{
			Department: department,
			Range:      dateRange,
			Trainers:   normalizeNames(query.Trainers),
			Units:      normalizeNames(query.Units),
			Classes:    classes,
		},
		Period:      period,
		Granularity: granularity,
	}, nil
}

// InvalidateCache drops every cached analytics result.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("invalidate analytics cache", zap.Error(err))
	}
}

func (s *AnalyticsService) fetch(ctx context.Context, filter models.AttendanceFilter) ([]models.LessonAttendanceRecord, error) {
	start := time.Now()
	records, err := s.repo.Records(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to query attendance")
	}
	s.metrics.ObserveDBQuery("analytics_attendance", time.Since(start))
	return records, nil
}

func attendanceCacheKey(q *ResolvedQuery) string {
	f := q.Filter
	return makeAnalyticsCacheKey(
		"attendance",
		"d="+departmentLabel(f.Department),
		"p="+string(q.Period),
		"from="+formatDate(f.Range.From),
		"to="+formatDate(f.Range.To),
		"g="+string(q.Granularity),
		"t="+strings.Join(f.Trainers, ","),
		"u="+strings.Join(f.Units, ","),
		"c="+strings.Join(f.Classes, ","),
	)
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func departmentLabel(department string) string {
	if department == "" {
		return models.DepartmentAll
	}
	return department
}

// normalizeNames trims, uppercases, de-duplicates and sorts names, dropping blanks.
func normalizeNames(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		name := normalizeName(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
