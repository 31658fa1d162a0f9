package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
)

// OutboxRepository handles the appointment_events outbox table. Events are
// inserted inside booking transactions and swept by the notification
// dispatcher; processed rows are retained as booking history.
type OutboxRepository struct {
	db *pgxpool.Pool
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// InsertTx writes an event row within the caller's transaction so the event
// commits or rolls back with the booking change it records.
func (r *OutboxRepository) InsertTx(ctx context.Context, tx pgx.Tx, event *models.AppointmentEvent) error {
	query := `
		INSERT INTO appointment_events (appointment_id, student_id, vip_id, action, recipient)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, occurred_at
	`

	err := tx.QueryRow(ctx, query,
		event.AppointmentID,
		event.StudentID,
		event.VIPID,
		event.Action,
		event.Recipient,
	).Scan(&event.ID, &event.OccurredAt)

	if err != nil {
		return fmt.Errorf("error inserting appointment event: %w", err)
	}

	return nil
}

// ListPending returns undelivered events oldest first, capped at limit
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*models.AppointmentEvent, error) {
	query := `
		SELECT id, appointment_id, student_id, vip_id, action, recipient, occurred_at, processed_at
		FROM appointment_events
		WHERE processed_at IS NULL
		ORDER BY occurred_at, id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pending events: %w", err)
	}
	defer rows.Close()

	var events []*models.AppointmentEvent
	for rows.Next() {
		var e models.AppointmentEvent
		if err := rows.Scan(
			&e.ID, &e.AppointmentID, &e.StudentID, &e.VIPID,
			&e.Action, &e.Recipient, &e.OccurredAt, &e.ProcessedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

// MarkProcessed stamps an event as delivered
func (r *OutboxRepository) MarkProcessed(ctx context.Context, eventID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE appointment_events SET processed_at = NOW() WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("error marking event processed: %w", err)
	}

	return nil
}

// ListByStudent returns a student's booking history newest first
func (r *OutboxRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.AppointmentEvent, error) {
	query := `
		SELECT id, appointment_id, student_id, vip_id, action, recipient, occurred_at, processed_at
		FROM appointment_events
		WHERE student_id = $1
		ORDER BY occurred_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing booking history: %w", err)
	}
	defer rows.Close()

	var events []*models.AppointmentEvent
	for rows.Next() {
		var e models.AppointmentEvent
		if err := rows.Scan(
			&e.ID, &e.AppointmentID, &e.StudentID, &e.VIPID,
			&e.Action, &e.Recipient, &e.OccurredAt, &e.ProcessedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}
