package services

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

var (
	bookingSelections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_selections_total",
		Help: "Appointment slots successfully selected.",
	})

	bookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Selection attempts rejected because the slot was already taken.",
	})

	bookingCancellations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_cancellations_total",
		Help: "Appointment slots released by their holder.",
	})
)

// AppointmentStore is the persistence surface the booking core needs. The
// conditional-update semantics of Select and Cancel live behind it: Select
// must attach the student only if the slot has none and report
// ErrSlotAlreadyTaken otherwise, Cancel must detach only the current holder
// and report ErrNotOwner otherwise.
type AppointmentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Appointment, error)
	ListAvailable(ctx context.Context, programID int64, vipID *int64) ([]*models.Appointment, error)
	ListSelectedByStudent(ctx context.Context, studentID, programID int64) ([]*models.Appointment, error)
	HasSelectedWithVIP(ctx context.Context, studentID, vipID int64) (bool, error)
	Select(ctx context.Context, appointmentID, studentID int64, recipient string) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID, studentID int64, recipient string) (*models.Appointment, error)
}

// EnrollmentStore answers program membership questions for the booking core
type EnrollmentStore interface {
	IsEnrolled(ctx context.Context, programID, userID int64) (bool, error)
}

// StudentDirectory resolves a student's notification address
type StudentDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// BookingService implements appointment selection and cancellation. Every
// operation takes the acting principal explicitly and authorizes before
// touching storage. Writes are conditional updates, so two students racing
// for the same slot resolve to exactly one winner regardless of what either
// of them read beforehand.
type BookingService struct {
	appointments AppointmentStore
	enrollments  EnrollmentStore
	students     StudentDirectory

	appointmentPolicy policy.AppointmentPolicy
}

// NewBookingService creates a new booking service
func NewBookingService(appointments AppointmentStore, enrollments EnrollmentStore, students StudentDirectory) *BookingService {
	return &BookingService{
		appointments: appointments,
		enrollments:  enrollments,
		students:     students,
	}
}

// authorize maps a policy denial to the right sentinel: missing session beats
// wrong role.
func authorize(actor policy.Actor, allowed bool) error {
	if !actor.Authenticated() {
		return apperrors.ErrUnauthenticated
	}
	if !allowed {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ListAvailable returns the open slots in a program, optionally limited to one
// VIP's schedule.
func (s *BookingService) ListAvailable(ctx context.Context, actor policy.Actor, programID int64, vipID *int64) ([]*models.Appointment, error) {
	if err := authorize(actor, s.appointmentPolicy.Index(actor)); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, programID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	return s.appointments.ListAvailable(ctx, programID, vipID)
}

// ListMine returns the slots the acting student currently holds in a program
func (s *BookingService) ListMine(ctx context.Context, actor policy.Actor, programID int64) ([]*models.Appointment, error) {
	if err := authorize(actor, s.appointmentPolicy.Index(actor)); err != nil {
		return nil, err
	}

	return s.appointments.ListSelectedByStudent(ctx, actor.UserID, programID)
}

// Select books a slot for the acting student. Checks run cheapest-first, but
// correctness never depends on them: the storage write re-checks availability
// atomically, and a slot grabbed between the read and the write surfaces as
// ErrSlotAlreadyTaken.
func (s *BookingService) Select(ctx context.Context, actor policy.Actor, appointmentID int64) (*models.Appointment, error) {
	if err := authorize(actor, s.appointmentPolicy.Create(actor)); err != nil {
		return nil, err
	}

	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.StudentID != nil {
		if appointment.HeldBy(actor.UserID) {
			return nil, apperrors.ErrDuplicateBooking
		}
		bookingConflicts.Inc()
		return nil, apperrors.ErrSlotAlreadyTaken
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, appointment.ProgramID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	taken, err := s.appointments.HasSelectedWithVIP(ctx, actor.UserID, appointment.VIPID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateBooking
	}

	student, err := s.students.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	selected, err := s.appointments.Select(ctx, appointmentID, actor.UserID, student.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrSlotAlreadyTaken) {
			bookingConflicts.Inc()
		}
		return nil, err
	}

	bookingSelections.Inc()
	logger.Info().
		Int64("appointmentId", selected.ID).
		Int64("studentId", actor.UserID).
		Int64("vipId", selected.VIPID).
		Msg("Appointment selected")

	selected.VIP = appointment.VIP
	return selected, nil
}

// Cancel releases a slot the acting student holds, returning it to available.
// Cancelling someone else's booking is ErrNotOwner regardless of roles.
func (s *BookingService) Cancel(ctx context.Context, actor policy.Actor, appointmentID int64) (*models.Appointment, error) {
	if err := authorize(actor, s.appointmentPolicy.Destroy(actor)); err != nil {
		return nil, err
	}

	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	student, err := s.students.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.appointments.Cancel(ctx, appointmentID, actor.UserID, student.Email)
	if err != nil {
		return nil, err
	}

	bookingCancellations.Inc()
	logger.Info().
		Int64("appointmentId", cancelled.ID).
		Int64("studentId", actor.UserID).
		Msg("Appointment cancelled")

	cancelled.VIP = appointment.VIP
	return cancelled, nil
}
