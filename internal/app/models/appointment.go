package models

import "time"

// Appointment is a bookable time unit on a VIP's schedule. A slot with no
// student attached is available; attaching a student selects it. Cancellation
// detaches the student and the slot returns to available.
type Appointment struct {
	ID        int64     `json:"id" db:"id"`
	ProgramID int64     `json:"programId" db:"program_id"`
	VIPID     int64     `json:"vipId" db:"vip_id"`
	StudentID *int64    `json:"studentId,omitempty" db:"student_id"` // nil while the slot is available
	StartsAt  time.Time `json:"startsAt" db:"starts_at"`
	EndsAt    time.Time `json:"endsAt" db:"ends_at"`
	Location  string    `json:"location,omitempty" db:"location"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	VIP     *VIP  `json:"vip,omitempty"`
	Student *User `json:"student,omitempty"`
}

// State derives the lifecycle state from student attachment.
func (a *Appointment) State() AppointmentState {
	if a.StudentID != nil {
		return AppointmentSelected
	}
	return AppointmentAvailable
}

// HeldBy reports whether the slot is currently selected by the given student.
func (a *Appointment) HeldBy(studentID int64) bool {
	return a.StudentID != nil && *a.StudentID == studentID
}
