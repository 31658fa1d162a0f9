package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/db"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// AppointmentRepository handles database operations for appointment slots
type AppointmentRepository struct {
	db     *pgxpool.Pool
	outbox *OutboxRepository
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *pgxpool.Pool, outbox *OutboxRepository) *AppointmentRepository {
	return &AppointmentRepository{
		db:     db,
		outbox: outbox,
	}
}

const appointmentColumns = `
	a.id, a.program_id, a.vip_id, a.student_id, a.starts_at, a.ends_at,
	a.location, a.created_at, a.updated_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(
		&a.ID,
		&a.ProgramID,
		&a.VIPID,
		&a.StudentID,
		&a.StartsAt,
		&a.EndsAt,
		&a.Location,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateSlots bulk-inserts available slots for a VIP. Produced rows carry no
// student attachment.
func (r *AppointmentRepository) CreateSlots(ctx context.Context, appointments []*models.Appointment) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO appointments (program_id, vip_id, starts_at, ends_at, location)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		for _, a := range appointments {
			err := tx.QueryRow(ctx, query, a.ProgramID, a.VIPID, a.StartsAt, a.EndsAt, a.Location).
				Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
			if err != nil {
				return fmt.Errorf("error creating appointment slot: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an appointment by ID with its VIP attached
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `
		SELECT` + appointmentColumns + `,
			v.id, v.program_id, v.name, v.title, v.email
		FROM appointments a
		JOIN vips v ON v.id = a.vip_id
		WHERE a.id = $1
	`

	var a models.Appointment
	var v models.VIP
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.ProgramID, &a.VIPID, &a.StudentID, &a.StartsAt, &a.EndsAt,
		&a.Location, &a.CreatedAt, &a.UpdatedAt,
		&v.ID, &v.ProgramID, &v.Name, &v.Title, &v.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("error retrieving appointment: %w", err)
	}

	a.VIP = &v
	return &a, nil
}

// ListAvailable retrieves available slots for a program ordered by start time,
// optionally filtered by VIP.
func (r *AppointmentRepository) ListAvailable(ctx context.Context, programID int64, vipID *int64) ([]*models.Appointment, error) {
	query := `
		SELECT` + appointmentColumns + `,
			v.id, v.program_id, v.name, v.title, v.email
		FROM appointments a
		JOIN vips v ON v.id = a.vip_id
		WHERE a.program_id = $1 AND a.student_id IS NULL
	`
	args := []interface{}{programID}
	if vipID != nil {
		query += ` AND a.vip_id = $2`
		args = append(args, *vipID)
	}
	query += ` ORDER BY a.starts_at, a.id`

	return r.queryWithVIP(ctx, query, args...)
}

// ListSelectedByStudent retrieves the student's selected slots in a program
// ordered by start time.
func (r *AppointmentRepository) ListSelectedByStudent(ctx context.Context, studentID, programID int64) ([]*models.Appointment, error) {
	query := `
		SELECT` + appointmentColumns + `,
			v.id, v.program_id, v.name, v.title, v.email
		FROM appointments a
		JOIN vips v ON v.id = a.vip_id
		WHERE a.program_id = $1 AND a.student_id = $2
		ORDER BY a.starts_at, a.id
	`
	return r.queryWithVIP(ctx, query, programID, studentID)
}

func (r *AppointmentRepository) queryWithVIP(ctx context.Context, query string, args ...interface{}) ([]*models.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		var a models.Appointment
		var v models.VIP
		if err := rows.Scan(
			&a.ID, &a.ProgramID, &a.VIPID, &a.StudentID, &a.StartsAt, &a.EndsAt,
			&a.Location, &a.CreatedAt, &a.UpdatedAt,
			&v.ID, &v.ProgramID, &v.Name, &v.Title, &v.Email,
		); err != nil {
			return nil, err
		}
		a.VIP = &v
		appointments = append(appointments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}

// ListByVIP retrieves every slot on a VIP's schedule, selected or not
func (r *AppointmentRepository) ListByVIP(ctx context.Context, vipID int64) ([]*models.Appointment, error) {
	query := `
		SELECT` + appointmentColumns + `,
			v.id, v.program_id, v.name, v.title, v.email
		FROM appointments a
		JOIN vips v ON v.id = a.vip_id
		WHERE a.vip_id = $1
		ORDER BY a.starts_at, a.id
	`
	return r.queryWithVIP(ctx, query, vipID)
}

// HasSelectedWithVIP reports whether the student already holds a selected slot
// with the given VIP.
func (r *AppointmentRepository) HasSelectedWithVIP(ctx context.Context, studentID, vipID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM appointments WHERE vip_id = $1 AND student_id = $2)`,
		vipID, studentID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking existing VIP booking: %w", err)
	}

	return exists, nil
}

// Select attaches the student to an available slot. The UPDATE is conditional
// on student_id IS NULL so two racing students resolve to exactly one winner;
// the loser sees zero affected rows and gets ErrSlotAlreadyTaken. The outbox
// event shares the transaction with the booking write.
func (r *AppointmentRepository) Select(ctx context.Context, appointmentID, studentID int64, recipient string) (*models.Appointment, error) {
	var updated *models.Appointment

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE appointments a
			SET student_id = $1, updated_at = NOW()
			WHERE a.id = $2 AND a.student_id IS NULL
			RETURNING` + appointmentColumns

		a, err := scanAppointment(tx.QueryRow(ctx, query, studentID, appointmentID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Either the slot does not exist or someone else holds it;
				// the service has already resolved NotFound before calling.
				return apperrors.ErrSlotAlreadyTaken
			}
			return fmt.Errorf("error selecting appointment: %w", err)
		}

		if err := r.outbox.InsertTx(ctx, tx, &models.AppointmentEvent{
			AppointmentID: a.ID,
			StudentID:     studentID,
			VIPID:         a.VIPID,
			Action:        models.ActionSelected,
			Recipient:     recipient,
		}); err != nil {
			return err
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Cancel detaches the student from a slot they hold, returning it to
// available. The UPDATE is conditional on the current holder so a student can
// never cancel someone else's booking.
func (r *AppointmentRepository) Cancel(ctx context.Context, appointmentID, studentID int64, recipient string) (*models.Appointment, error) {
	var updated *models.Appointment

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			UPDATE appointments a
			SET student_id = NULL, updated_at = NOW()
			WHERE a.id = $1 AND a.student_id = $2
			RETURNING` + appointmentColumns

		a, err := scanAppointment(tx.QueryRow(ctx, query, appointmentID, studentID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotOwner
			}
			return fmt.Errorf("error cancelling appointment: %w", err)
		}

		if err := r.outbox.InsertTx(ctx, tx, &models.AppointmentEvent{
			AppointmentID: a.ID,
			StudentID:     studentID,
			VIPID:         a.VIPID,
			Action:        models.ActionCancelled,
			Recipient:     recipient,
		}); err != nil {
			return err
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a slot. Admin-side only; a held slot cannot be deleted.
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND student_id IS NULL`, id)
	if err != nil {
		return fmt.Errorf("error deleting appointment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAppointmentNotFound
	}

	return nil
}

// ReportRow is a flattened appointment line for CSV reporting
type ReportRow struct {
	StudentEmail     string
	StudentFirstName string
	StudentLastName  string
	VIPName          string
	StartsAt         string
	EndsAt           string
	Location         string
	State            string
}

// ListReportRows returns every slot in a program joined with its VIP and, when
// selected, the holding student. Used by the super-admin CSV export.
func (r *AppointmentRepository) ListReportRows(ctx context.Context, programID int64) ([]ReportRow, error) {
	query := `
		SELECT
			COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
			v.name,
			to_char(a.starts_at, 'YYYY-MM-DD HH24:MI'),
			to_char(a.ends_at, 'YYYY-MM-DD HH24:MI'),
			a.location,
			CASE WHEN a.student_id IS NULL THEN 'AVAILABLE' ELSE 'SELECTED' END
		FROM appointments a
		JOIN vips v ON v.id = a.vip_id
		LEFT JOIN users u ON u.id = a.student_id
		WHERE a.program_id = $1
		ORDER BY v.name, a.starts_at
	`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing report rows: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(
			&row.StudentEmail, &row.StudentFirstName, &row.StudentLastName,
			&row.VIPName, &row.StartsAt, &row.EndsAt, &row.Location, &row.State,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
