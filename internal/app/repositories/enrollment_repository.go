package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// EnrollmentRepository handles student-to-program enrollment records
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create enrolls a student in a program
func (r *EnrollmentRepository) Create(ctx context.Context, programID, userID int64) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (program_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	enrollment := &models.Enrollment{ProgramID: programID, UserID: userID}
	err := r.db.QueryRow(ctx, query, programID, userID).Scan(&enrollment.ID, &enrollment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyEnrolled
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	return enrollment, nil
}

// IsEnrolled reports whether the student is enrolled in the program
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, programID, userID int64) (bool, error) {
	var enrolled bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE program_id = $1 AND user_id = $2)`,
		programID, userID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}

	return enrolled, nil
}

// RosterRow is one line of the student roster export
type RosterRow struct {
	Email         string
	FirstName     string
	LastName      string
	EnrolledAt    string
	SelectedSlots int64
}

// ListRosterRows returns every enrolled student in a program with their
// selected appointment count. Used by the admin CSV export.
func (r *EnrollmentRepository) ListRosterRows(ctx context.Context, programID int64) ([]RosterRow, error) {
	query := `
		SELECT u.email, u.first_name, u.last_name,
			to_char(e.created_at, 'YYYY-MM-DD'),
			COUNT(a.id)
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		LEFT JOIN appointments a ON a.student_id = u.id AND a.program_id = e.program_id
		WHERE e.program_id = $1
		GROUP BY u.id, u.email, u.first_name, u.last_name, e.created_at
		ORDER BY u.last_name, u.first_name
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing roster rows: %w", err)
	}
	defer rows.Close()

	var out []RosterRow
	for rows.Next() {
		var row RosterRow
		if err := rows.Scan(&row.Email, &row.FirstName, &row.LastName, &row.EnrolledAt, &row.SelectedSlots); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// CountByProgram returns the number of students enrolled in a program
func (r *EnrollmentRepository) CountByProgram(ctx context.Context, programID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE program_id = $1`, programID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return count, nil
}

// ListByProgram retrieves a page of a program's enrolled students
func (r *EnrollmentRepository) ListByProgram(ctx context.Context, programID int64, offset uint64, limit int) ([]*models.Enrollment, error) {
	query := `
		SELECT e.id, e.program_id, e.user_id, e.created_at,
			u.id, u.email, u.first_name, u.last_name
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.program_id = $1
		ORDER BY u.last_name, u.first_name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, programID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var u models.User
		if err := rows.Scan(
			&e.ID, &e.ProgramID, &e.UserID, &e.CreatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName,
		); err != nil {
			return nil, err
		}
		e.User = &u
		enrollments = append(enrollments, &e)
	}

	return enrollments, rows.Err()
}

// ListProgramsForStudent retrieves the programs a student is enrolled in
func (r *EnrollmentRepository) ListProgramsForStudent(ctx context.Context, userID int64) ([]*models.Program, error) {
	query := `
		SELECT p.id, p.department_id, p.name, p.code, p.visit_starts_on, p.visit_ends_on
		FROM programs p
		JOIN enrollments e ON e.program_id = p.id
		WHERE e.user_id = $1
		ORDER BY p.visit_starts_on DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing student programs: %w", err)
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

// Delete removes a student's enrollment from a program
func (r *EnrollmentRepository) Delete(ctx context.Context, programID, userID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM enrollments WHERE program_id = $1 AND user_id = $2`, programID, userID)
	if err != nil {
		return fmt.Errorf("error deleting enrollment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	return nil
}
