package dto

import "time"

// CreateEventRequest represents an admin request to create a calendar event
type CreateEventRequest struct {
	ProgramID   int64     `json:"programId" binding:"required,min=1"`
	Title       string    `json:"title" binding:"required"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// UpdateEventRequest represents an admin request to update a calendar event
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}
