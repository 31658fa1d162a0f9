package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create inserts a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) (*models.Department, error) {
	query := `
		INSERT INTO departments (name, code)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, dept.Name, dept.Code).Scan(&dept.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDepartmentAlreadyExists
		}
		return nil, fmt.Errorf("error creating department: %w", err)
	}

	return dept, nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	var dept models.Department
	err := r.db.QueryRow(ctx, `SELECT id, name, code FROM departments WHERE id = $1`, id).
		Scan(&dept.ID, &dept.Name, &dept.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &dept, nil
}

// List retrieves all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Code); err != nil {
			return nil, err
		}
		departments = append(departments, &dept)
	}

	return departments, rows.Err()
}

// Update modifies an existing department
func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE departments SET name = $1, code = $2 WHERE id = $3`,
		dept.Name, dept.Code, dept.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error updating department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}

// Delete removes a department
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}
