package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

// DepartmentRepository reads the seeded department reference set.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new instance of DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by code.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT department_code, department_name FROM departments ORDER BY department_code`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, classify("list departments", err)
	}
	return departments, nil
}

// Exists reports whether a department code is known.
func (r *DepartmentRepository) Exists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM departments WHERE department_code = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, classify("check department", err)
	}
	return exists, nil
}
