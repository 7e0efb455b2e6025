package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

const assignmentColumns = `id, username, class_name, department_code, assigned_at`

// AssignmentFilter narrows class-rep assignment listings.
type AssignmentFilter struct {
	Department string
	Username   string
}

// AssignmentRepository manages class-rep to class links.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Insert links a rep to a class unless the link already exists.
func (r *AssignmentRepository) Insert(ctx context.Context, username, className, department string) (*models.AssignmentResult, error) {
	const insert = `INSERT INTO class_rep_assignments (username, class_name, department_code) VALUES ($1, $2, $3)
ON CONFLICT (username, class_name, department_code) DO NOTHING RETURNING ` + assignmentColumns
	var assignment models.ClassRepAssignment
	err := r.db.GetContext(ctx, &assignment, insert, username, className, department)
	switch {
	case err == nil:
		return &models.AssignmentResult{Outcome: models.OutcomeCreated, Assignment: assignment}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, classify("insert class rep assignment", err)
	}

	const existing = `SELECT ` + assignmentColumns + ` FROM class_rep_assignments WHERE username = $1 AND class_name = $2 AND department_code = $3`
	if err := r.db.GetContext(ctx, &assignment, existing, username, className, department); err != nil {
		return nil, classify("find class rep assignment", err)
	}
	return &models.AssignmentResult{Outcome: models.OutcomeAlreadyExists, Assignment: assignment}, nil
}

// List returns assignments matching the filter ordered by department, username then class.
func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.ClassRepAssignment, error) {
	var conditions []string
	var args []interface{}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department_code = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Username != "" {
		conditions = append(conditions, fmt.Sprintf("username = $%d", len(args)+1))
		args = append(args, filter.Username)
	}

	query := `SELECT ` + assignmentColumns + ` FROM class_rep_assignments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY department_code, username, class_name"

	var assignments []models.ClassRepAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, classify("list class rep assignments", err)
	}
	return assignments, nil
}

// ListByUsername returns the assignments of one rep in assignment order.
func (r *AssignmentRepository) ListByUsername(ctx context.Context, username string) ([]models.ClassRepAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM class_rep_assignments WHERE username = $1 ORDER BY assigned_at, id`
	var assignments []models.ClassRepAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, username); err != nil {
		return nil, classify("list assignments by username", err)
	}
	return assignments, nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.ClassRepAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM class_rep_assignments WHERE id = $1`
	var assignment models.ClassRepAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, classify("find class rep assignment", err)
	}
	return &assignment, nil
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM class_rep_assignments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return classify("delete class rep assignment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify("delete class rep assignment", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
