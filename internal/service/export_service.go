package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/pkg/export"
)

// Export datasets.
const (
	DatasetRecords  = "records"
	DatasetTrainers = "trainers"
	DatasetBuckets  = "buckets"
	DatasetReasons  = "reasons"
	DatasetSummary  = "summary"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService flattens analytics results into tables and renders them.
type ExportService struct {
	analytics *AnalyticsService
	renderers map[string]tabularRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(analytics *AnalyticsService, csv, pdf tabularRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		analytics: analytics,
		renderers: map[string]tabularRenderer{FormatCSV: csv, FormatPDF: pdf},
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export renders one dataset of an attendance query in the requested format.
func (s *ExportService) Export(ctx context.Context, session *models.Session, query models.AttendanceQuery, dataset, format string) (*ExportFile, error) {
	dataset = strings.ToLower(strings.TrimSpace(dataset))
	if dataset == "" {
		dataset = DatasetRecords
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok || renderer == nil {
		return nil, validationError(fmt.Sprintf("unsupported export format %q", format))
	}

	var table export.Dataset
	var department string
	switch dataset {
	case DatasetRecords:
		records, resolved, err := s.analytics.Records(ctx, session, query)
		if err != nil {
			return nil, err
		}
		department = departmentLabel(resolved.Filter.Department)
		table = RecordsDataset(records)
	case DatasetTrainers, DatasetBuckets, DatasetReasons, DatasetSummary:
		result, _, err := s.analytics.Query(ctx, session, query)
		if err != nil {
			return nil, err
		}
		department = result.Department
		table = AggregateDataset(result, dataset)
	default:
		return nil, validationError(fmt.Sprintf("unsupported export dataset %q", dataset))
	}
	table.Title = fmt.Sprintf("%s - %s", table.Title, department)

	content, err := renderer.Render(table)
	if err != nil {
		return nil, storeError(err, "failed to render export")
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.%s", dataset, strings.ToLower(department), s.now().Format("20060102_150405"), renderer.Extension())
	s.logger.Info("export rendered", zap.String("dataset", dataset), zap.String("format", format), zap.Int("rows", len(table.Rows)))
	return &ExportFile{Filename: filename, ContentType: renderer.ContentType(), Content: content}, nil
}

// RecordsDataset flattens raw reports.
func RecordsDataset(records []models.LessonAttendanceRecord) export.Dataset {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.LessonDate.Format(models.DateLayout),
			r.DepartmentCode,
			r.ClassName,
			r.UnitName,
			r.TrainerName,
			r.TimeSlot,
			string(r.Status),
			derefString(r.Reason),
			derefString(r.Remarks),
			r.ReportedBy,
		})
	}
	return export.Dataset{
		Title:   "Lesson Attendance Records",
		Headers: []string{"Date", "Department", "Class", "Unit", "Trainer", "Time Slot", "Status", "Reason", "Remarks", "Reported By"},
		Rows:    rows,
	}
}

// AggregateDataset flattens one section of an aggregate result.
func AggregateDataset(result *models.AggregateResult, dataset string) export.Dataset {
	switch dataset {
	case DatasetTrainers:
		rows := make([][]string, 0, len(result.Trainers))
		for _, t := range result.Trainers {
			rows = append(rows, totalsRow(t.Name, t.AttendanceTotals))
		}
		return export.Dataset{Title: "Trainer Ranking", Headers: totalsHeaders("Trainer"), Rows: rows}
	case DatasetBuckets:
		rows := make([][]string, 0, len(result.Buckets))
		for _, b := range result.Buckets {
			rows = append(rows, totalsRow(b.Key, b.AttendanceTotals))
		}
		return export.Dataset{Title: "Attendance Trend (" + string(result.Granularity) + ")", Headers: totalsHeaders("Period"), Rows: rows}
	case DatasetReasons:
		rows := make([][]string, 0, len(result.Reasons))
		for _, r := range result.Reasons {
			rows = append(rows, []string{r.Reason, strconv.Itoa(r.Count)})
		}
		return export.Dataset{Title: "Reasons for Missed Lessons", Headers: []string{"Reason", "Count"}, Rows: rows}
	default:
		return export.Dataset{
			Title:   "Attendance Summary",
			Headers: []string{"Department", "Period", "From", "To", "Total", "Taught", "Missed", "Rate (%)"},
			Rows: [][]string{{
				result.Department,
				string(result.Period),
				formatDate(result.Range.From),
				formatDate(result.Range.To),
				strconv.Itoa(result.Totals.Total),
				strconv.Itoa(result.Totals.Taught),
				strconv.Itoa(result.Totals.Missed),
				formatRate(result.Totals.Rate),
			}},
		}
	}
}

func totalsHeaders(first string) []string {
	return []string{first, "Total", "Taught", "Missed", "Rate (%)"}
}

func totalsRow(name string, t models.AttendanceTotals) []string {
	return []string{name, strconv.Itoa(t.Total), strconv.Itoa(t.Taught), strconv.Itoa(t.Missed), formatRate(t.Rate)}
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
