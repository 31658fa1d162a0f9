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

// ProgramRepository handles database operations for visit programs
type ProgramRepository struct {
	db *pgxpool.Pool
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create inserts a new program under a department
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) (*models.Program, error) {
	query := `
		INSERT INTO programs (department_id, name, code, visit_starts_on, visit_ends_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		program.DepartmentID,
		program.Name,
		program.Code,
		program.VisitStartsOn,
		program.VisitEndsOn,
	).Scan(&program.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrProgramAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error creating program: %w", err)
	}

	return program, nil
}

// GetByID retrieves a program by ID
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	query := `
		SELECT id, department_id, name, code, visit_starts_on, visit_ends_on
		FROM programs
		WHERE id = $1
	`

	var p models.Program
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.DepartmentID, &p.Name, &p.Code, &p.VisitStartsOn, &p.VisitEndsOn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}

	return &p, nil
}

// ListByDepartment retrieves a department's programs ordered by visit start
func (r *ProgramRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]*models.Program, error) {
	query := `
		SELECT id, department_id, name, code, visit_starts_on, visit_ends_on
		FROM programs
		WHERE department_id = $1
		ORDER BY visit_starts_on DESC, name
	`

	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.DepartmentID, &p.Name, &p.Code, &p.VisitStartsOn, &p.VisitEndsOn); err != nil {
			return nil, err
		}
		programs = append(programs, &p)
	}

	return programs, rows.Err()
}

// Update modifies an existing program
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	query := `
		UPDATE programs
		SET name = $1, code = $2, visit_starts_on = $3, visit_ends_on = $4
		WHERE id = $5
	`

	cmdTag, err := r.db.Exec(ctx, query,
		program.Name, program.Code, program.VisitStartsOn, program.VisitEndsOn, program.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrProgramAlreadyExists
		}
		return fmt.Errorf("error updating program: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}

	return nil
}

// Delete removes a program
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting program: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}

	return nil
}
