package models

import "time"

// AppointmentEvent is a transactional outbox row recording a booking state
// change. It is written in the same transaction as the booking UPDATE and
// delivered asynchronously by the notification dispatcher. Rows are kept after
// dispatch; they double as the booking history for reporting.
type AppointmentEvent struct {
	ID            int64             `json:"id" db:"id"`
	AppointmentID int64             `json:"appointmentId" db:"appointment_id"`
	StudentID     int64             `json:"studentId" db:"student_id"`
	VIPID         int64             `json:"vipId" db:"vip_id"`
	Action        AppointmentAction `json:"action" db:"action"`
	Recipient     string            `json:"recipient" db:"recipient"` // student email at time of booking
	OccurredAt    time.Time         `json:"occurredAt" db:"occurred_at"`
	ProcessedAt   *time.Time        `json:"processedAt,omitempty" db:"processed_at"` // nil until delivered
}
