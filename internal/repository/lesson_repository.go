package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

const lessonColumns = `id, lesson_date, class_name, unit_name, trainer_name, time_slot, status, reason, remarks, reported_by, department_code, created_at`

// LessonRepository persists lesson attendance reports.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new instance of LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create inserts a report. A second report for the same lesson slot yields ErrUniqueViolation.
func (r *LessonRepository) Create(ctx context.Context, record *models.LessonAttendanceRecord) error {
	const query = `INSERT INTO lesson_attendance (lesson_date, class_name, unit_name, trainer_name, time_slot, status, reason, remarks, reported_by, department_code)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		record.LessonDate,
		record.ClassName,
		record.UnitName,
		record.TrainerName,
		record.TimeSlot,
		record.Status,
		record.Reason,
		record.Remarks,
		record.ReportedBy,
		record.DepartmentCode,
	)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return classify("create lesson report", err)
	}
	return nil
}

// List returns reports newest first with the total count.
func (r *LessonRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.LessonAttendanceRecord, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department_code = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.ReportedBy != "" {
		conditions = append(conditions, fmt.Sprintf("reported_by = $%d", len(args)+1))
		args = append(args, filter.ReportedBy)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	baseQuery := "FROM lesson_attendance"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", lessonColumns, baseQuery, pageSize, offset)
	var records []models.LessonAttendanceRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, classify("list lesson reports", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, classify("count lesson reports", err)
	}
	return records, total, nil
}

// DeleteByIDs removes the selected reports in one transaction. The rows are locked and
// handed to guard first; a guard error aborts the transaction leaving every row in place.
func (r *LessonRepository) DeleteByIDs(ctx context.Context, ids []int64, guard func([]models.LessonAttendanceRecord) error) (deleted int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, classify("begin delete lesson reports", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked []models.LessonAttendanceRecord
	const selectQuery = `SELECT ` + lessonColumns + ` FROM lesson_attendance WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	if err = tx.SelectContext(ctx, &locked, selectQuery, pq.Array(ids)); err != nil {
		return 0, classify("lock lesson reports", err)
	}

	if guard != nil {
		if err = guard(locked); err != nil {
			return 0, err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM lesson_attendance WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, classify("delete lesson reports", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, classify("delete lesson reports", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, classify("commit delete lesson reports", err)
	}
	return int(affected), nil
}
