package dto

import (
	"time"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
)

// AppointmentResponse is the public view of an appointment slot
type AppointmentResponse struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"programId"`
	VIPID     int64     `json:"vipId"`
	VIPName   string    `json:"vipName,omitempty"`
	StudentID *int64    `json:"studentId,omitempty"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Location  string    `json:"location,omitempty"`
	State     string    `json:"state" enums:"AVAILABLE,SELECTED"`
}

// FromAppointment converts a models.Appointment to an AppointmentResponse
func FromAppointment(a *models.Appointment) AppointmentResponse {
	if a == nil {
		return AppointmentResponse{}
	}

	resp := AppointmentResponse{
		ID:        a.ID,
		ProgramID: a.ProgramID,
		VIPID:     a.VIPID,
		StudentID: a.StudentID,
		StartsAt:  a.StartsAt,
		EndsAt:    a.EndsAt,
		Location:  a.Location,
		State:     string(a.State()),
	}
	if a.VIP != nil {
		resp.VIPName = a.VIP.Name
	}
	return resp
}

// FromAppointments converts a slice of appointments
func FromAppointments(appointments []*models.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, FromAppointment(a))
	}
	return out
}

// CreateSlotsRequest is the admin bulk slot creation payload for a VIP
type CreateSlotsRequest struct {
	Slots []SlotRequest `json:"slots" binding:"required,min=1,dive"`
}

// SlotRequest describes a single slot to create
type SlotRequest struct {
	StartsAt time.Time `json:"startsAt" binding:"required"`
	EndsAt   time.Time `json:"endsAt" binding:"required"`
	Location string    `json:"location"`
}
