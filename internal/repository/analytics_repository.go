package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

// AnalyticsRepository fetches the raw attendance rows aggregated by the analytics engine.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs a new analytics repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Records returns reports matching every filter, oldest lesson first.
func (r *AnalyticsRepository) Records(ctx context.Context, filter models.AttendanceFilter) ([]models.LessonAttendanceRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department_code = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Range.From != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)+1))
		args = append(args, *filter.Range.From)
	}
	if filter.Range.To != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)+1))
		args = append(args, *filter.Range.To)
	}
	if len(filter.Trainers) > 0 {
		conditions = append(conditions, fmt.Sprintf("trainer_name = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Trainers))
	}
	if len(filter.Units) > 0 {
		conditions = append(conditions, fmt.Sprintf("unit_name = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Units))
	}
	if len(filter.Classes) > 0 {
		conditions = append(conditions, fmt.Sprintf("class_name = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Classes))
	}

	query := `SELECT ` + lessonColumns + ` FROM lesson_attendance`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY lesson_date, time_slot, id"

	var records []models.LessonAttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, classify("query attendance records", err)
	}
	return records, nil
}
