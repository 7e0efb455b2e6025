package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/export"
)

func newExportService(w *world) *ExportService {
	svc := NewExportService(w.analytics, export.NewCSVExporter(), export.NewPDFExporter(), nil)
	now := date("2024-06-10").Add(13*time.Hour + 5*time.Minute)
	svc.now = func() time.Time { return now }
	return svc
}

func TestExportTrainerRankingCSV(t *testing.T) {
	w := newWorld(t)
	seedTermLessons(w)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")

	file, err := newExportService(w).Export(context.Background(), sessionFor(admin), models.AttendanceQuery{Department: "ict"}, "trainers", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "attendance_trainers_ict_20240610_130500.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Trainer,Total,Taught,Missed,Rate (%)", lines[0])
	assert.Equal(t, "MARY,1,1,0,100.0", lines[1])
	assert.Equal(t, "JOHN,3,1,2,33.3", lines[2])
}

func TestExportRecordsDefaultsAndPDF(t *testing.T) {
	w := newWorld(t)
	seedTermLessons(w)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")
	svc := newExportService(w)

	file, err := svc.Export(context.Background(), sessionFor(admin), models.AttendanceQuery{}, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Filename, "attendance_records_all_"))
	assert.Contains(t, string(file.Content), "2024-02-20,ICT,ICT-1A,NETWORKING,JOHN,7.30-9.00,Not Taught,Trainer Late,,seed")

	pdf, err := svc.Export(context.Background(), sessionFor(admin), models.AttendanceQuery{}, "summary", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Content), "%PDF"))
}

func TestExportRejectsUnknownDatasetAndFormat(t *testing.T) {
	w := newWorld(t)
	admin := w.users.add("admin", models.RoleSuperAdmin, "", "")
	svc := newExportService(w)

	_, err := svc.Export(context.Background(), sessionFor(admin), models.AttendanceQuery{}, "records", "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Export(context.Background(), sessionFor(admin), models.AttendanceQuery{}, "everything", "csv")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAggregateDatasetReasonsAndBuckets(t *testing.T) {
	result := &models.AggregateResult{
		Granularity: models.GranularityMonthly,
		Buckets: []models.AttendanceBucket{
			{Key: "2024-01", AttendanceTotals: models.AttendanceTotals{Total: 2, Taught: 1, Missed: 1, Rate: 50}},
		},
		Reasons: []models.ReasonCount{{Reason: "Trainer Absent", Count: 4}},
	}

	buckets := AggregateDataset(result, DatasetBuckets)
	assert.Equal(t, "Attendance Trend (monthly)", buckets.Title)
	assert.Equal(t, [][]string{{"2024-01", "2", "1", "1", "50.0"}}, buckets.Rows)

	reasons := AggregateDataset(result, DatasetReasons)
	assert.Equal(t, []string{"Reason", "Count"}, reasons.Headers)
	assert.Equal(t, [][]string{{"Trainer Absent", "4"}}, reasons.Rows)
}
