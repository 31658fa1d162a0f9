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

// VIPRepository handles database operations for visiting faculty
type VIPRepository struct {
	db *pgxpool.Pool
}

// NewVIPRepository creates a new VIP repository
func NewVIPRepository(db *pgxpool.Pool) *VIPRepository {
	return &VIPRepository{db: db}
}

// Create inserts a new VIP under a program
func (r *VIPRepository) Create(ctx context.Context, vip *models.VIP) (*models.VIP, error) {
	query := `
		INSERT INTO vips (program_id, name, title, email, bio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, vip.ProgramID, vip.Name, vip.Title, vip.Email, vip.Bio).
		Scan(&vip.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error creating VIP: %w", err)
	}

	return vip, nil
}

// GetByID retrieves a VIP by ID
func (r *VIPRepository) GetByID(ctx context.Context, id int64) (*models.VIP, error) {
	query := `SELECT id, program_id, name, title, email, bio FROM vips WHERE id = $1`

	var v models.VIP
	err := r.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.ProgramID, &v.Name, &v.Title, &v.Email, &v.Bio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrVIPNotFound
		}
		return nil, fmt.Errorf("error retrieving VIP: %w", err)
	}

	return &v, nil
}

// ListByProgram retrieves a program's VIPs ordered by name
func (r *VIPRepository) ListByProgram(ctx context.Context, programID int64) ([]*models.VIP, error) {
	query := `SELECT id, program_id, name, title, email, bio FROM vips WHERE program_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing VIPs: %w", err)
	}
	defer rows.Close()

	var vips []*models.VIP
	for rows.Next() {
		var v models.VIP
		if err := rows.Scan(&v.ID, &v.ProgramID, &v.Name, &v.Title, &v.Email, &v.Bio); err != nil {
			return nil, err
		}
		vips = append(vips, &v)
	}

	return vips, rows.Err()
}

// Update modifies an existing VIP
func (r *VIPRepository) Update(ctx context.Context, vip *models.VIP) error {
	query := `UPDATE vips SET name = $1, title = $2, email = $3, bio = $4 WHERE id = $5`

	cmdTag, err := r.db.Exec(ctx, query, vip.Name, vip.Title, vip.Email, vip.Bio, vip.ID)
	if err != nil {
		return fmt.Errorf("error updating VIP: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrVIPNotFound
	}

	return nil
}

// Delete removes a VIP. Their slots go with them via cascade.
func (r *VIPRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM vips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting VIP: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrVIPNotFound
	}

	return nil
}
