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

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, program_id, title, starts_at, ends_at, location, description`

// Create inserts a new calendar event under a program
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (program_id, title, starts_at, ends_at, location, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		event.ProgramID, event.Title, event.StartsAt, event.EndsAt, event.Location, event.Description,
	).Scan(&event.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("error creating calendar event: %w", err)
	}

	return event, nil
}

// GetByID retrieves a calendar event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1`

	var e models.CalendarEvent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.ProgramID, &e.Title, &e.StartsAt, &e.EndsAt, &e.Location, &e.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving calendar event: %w", err)
	}

	return &e, nil
}

// ListByProgram retrieves a program's events ordered by start time
func (r *EventRepository) ListByProgram(ctx context.Context, programID int64) ([]*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE program_id = $1 ORDER BY starts_at, id`

	rows, err := r.db.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing calendar events: %w", err)
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		if err := rows.Scan(&e.ID, &e.ProgramID, &e.Title, &e.StartsAt, &e.EndsAt, &e.Location, &e.Description); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

// Update modifies an existing calendar event
func (r *EventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, starts_at = $2, ends_at = $3, location = $4, description = $5
		WHERE id = $6
	`

	cmdTag, err := r.db.Exec(ctx, query,
		event.Title, event.StartsAt, event.EndsAt, event.Location, event.Description, event.ID)
	if err != nil {
		return fmt.Errorf("error updating calendar event: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

// Delete removes a calendar event
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting calendar event: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
