package models

import "time"

// CalendarEvent is a scheduled program activity shown to visiting students
type CalendarEvent struct {
	ID          int64     `json:"id" db:"id"`
	ProgramID   int64     `json:"programId" db:"program_id"`
	Title       string    `json:"title" db:"title"`
	StartsAt    time.Time `json:"startsAt" db:"starts_at"`
	EndsAt      time.Time `json:"endsAt" db:"ends_at"`
	Location    string    `json:"location,omitempty" db:"location"`
	Description string    `json:"description,omitempty" db:"description"`
}
