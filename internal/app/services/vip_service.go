package services

import (
	"context"
	"time"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// VIPService handles visiting faculty management and their slot schedules.
// Write operations are department-scoped through the owning program.
type VIPService struct {
	vipRepo         *repositories.VIPRepository
	programRepo     *repositories.ProgramRepository
	appointmentRepo *repositories.AppointmentRepository
	enrollmentRepo  *repositories.EnrollmentRepository
}

// NewVIPService creates a new VIP service
func NewVIPService(
	vipRepo *repositories.VIPRepository,
	programRepo *repositories.ProgramRepository,
	appointmentRepo *repositories.AppointmentRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
) *VIPService {
	return &VIPService{
		vipRepo:         vipRepo,
		programRepo:     programRepo,
		appointmentRepo: appointmentRepo,
		enrollmentRepo:  enrollmentRepo,
	}
}

func (s *VIPService) requireVIPAdmin(ctx context.Context, actor policy.Actor, vipID int64) (*models.VIP, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	vip, err := s.vipRepo.GetByID(ctx, vipID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, vip.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	return vip, nil
}

// Create adds a VIP under a program the actor administers
func (s *VIPService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateVIPRequest) (*models.VIP, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	vip := &models.VIP{
		ProgramID: req.ProgramID,
		Name:      req.Name,
		Title:     req.Title,
		Email:     req.Email,
		Bio:       req.Bio,
	}

	created, err := s.vipRepo.Create(ctx, vip)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("vipId", created.ID).Int64("programId", created.ProgramID).Msg("VIP created")
	return created, nil
}

// ListForProgram retrieves a program's VIPs. Admins must manage the owning
// department, students must be enrolled.
func (s *VIPService) ListForProgram(ctx context.Context, actor policy.Actor, programID int64) ([]*models.VIP, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		if !actor.ManagesDepartment(program.DepartmentID) {
			return nil, apperrors.ErrPermissionDenied
		}
	} else {
		enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, programID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apperrors.ErrNotEnrolled
		}
	}

	return s.vipRepo.ListByProgram(ctx, programID)
}

// Update modifies a VIP the actor administers
func (s *VIPService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateVIPRequest) (*models.VIP, error) {
	vip, err := s.requireVIPAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	vip.Name = req.Name
	vip.Title = req.Title
	vip.Email = req.Email
	vip.Bio = req.Bio

	if err := s.vipRepo.Update(ctx, vip); err != nil {
		return nil, err
	}

	return vip, nil
}

// Delete removes a VIP the actor administers
func (s *VIPService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if _, err := s.requireVIPAdmin(ctx, actor, id); err != nil {
		return err
	}

	return s.vipRepo.Delete(ctx, id)
}

// CreateSlots bulk-creates available appointment slots on a VIP's schedule.
// Slot times must be well-formed and fall inside the program's visit window.
func (s *VIPService) CreateSlots(ctx context.Context, actor policy.Actor, vipID int64, req *dto.CreateSlotsRequest) ([]*models.Appointment, error) {
	vip, err := s.requireVIPAdmin(ctx, actor, vipID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, vip.ProgramID)
	if err != nil {
		return nil, err
	}

	appointments := make([]*models.Appointment, 0, len(req.Slots))
	for _, slot := range req.Slots {
		if !slot.EndsAt.After(slot.StartsAt) {
			return nil, apperrors.NewBadRequestError("slot end time must be after start time")
		}
		if slot.StartsAt.Before(startOfDay(program.VisitStartsOn)) || slot.EndsAt.After(endOfDay(program.VisitEndsOn)) {
			return nil, apperrors.NewBadRequestError("slot falls outside the program visit window")
		}

		appointments = append(appointments, &models.Appointment{
			ProgramID: vip.ProgramID,
			VIPID:     vip.ID,
			StartsAt:  slot.StartsAt,
			EndsAt:    slot.EndsAt,
			Location:  slot.Location,
		})
	}

	if err := s.appointmentRepo.CreateSlots(ctx, appointments); err != nil {
		return nil, err
	}

	logger.Info().Int64("vipId", vip.ID).Int("count", len(appointments)).Msg("Appointment slots created")
	return appointments, nil
}

// DeleteSlot removes an unselected slot from a VIP's schedule
func (s *VIPService) DeleteSlot(ctx context.Context, actor policy.Actor, appointmentID int64) error {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return err
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	program, err := s.programRepo.GetByID(ctx, appointment.ProgramID)
	if err != nil {
		return err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return apperrors.ErrPermissionDenied
	}

	if appointment.StudentID != nil {
		return apperrors.NewConflictError("cannot delete a slot a student has selected")
	}

	return s.appointmentRepo.Delete(ctx, appointmentID)
}

// ListSlots retrieves every slot on a VIP's schedule for an admin, selected
// or not.
func (s *VIPService) ListSlots(ctx context.Context, actor policy.Actor, vipID int64) ([]*models.Appointment, error) {
	vip, err := s.requireVIPAdmin(ctx, actor, vipID)
	if err != nil {
		return nil, err
	}

	return s.appointmentRepo.ListByVIP(ctx, vip.ID)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24 * time.Hour)
}
