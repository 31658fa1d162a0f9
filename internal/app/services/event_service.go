package services

import (
	"context"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// EventService handles the program calendar shown to visiting students
type EventService struct {
	eventRepo      *repositories.EventRepository
	programRepo    *repositories.ProgramRepository
	enrollmentRepo *repositories.EnrollmentRepository
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo *repositories.EventRepository,
	programRepo *repositories.ProgramRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
) *EventService {
	return &EventService{
		eventRepo:      eventRepo,
		programRepo:    programRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *EventService) requireEventAdmin(ctx context.Context, actor policy.Actor, eventID int64) (*models.CalendarEvent, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, event.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	return event, nil
}

// Create adds an event to a program calendar the actor administers
func (s *EventService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateEventRequest) (*models.CalendarEvent, error) {
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
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.NewBadRequestError("event end time must be after start time")
	}

	event := &models.CalendarEvent{
		ProgramID:   req.ProgramID,
		Title:       req.Title,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		Description: req.Description,
	}

	return s.eventRepo.Create(ctx, event)
}

// ListForProgram retrieves a program's calendar. Admins must manage the
// owning department, students must be enrolled.
func (s *EventService) ListForProgram(ctx context.Context, actor policy.Actor, programID int64) ([]*models.CalendarEvent, error) {
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

	return s.eventRepo.ListByProgram(ctx, programID)
}

// Update modifies an event the actor administers
func (s *EventService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateEventRequest) (*models.CalendarEvent, error) {
	event, err := s.requireEventAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.NewBadRequestError("event end time must be after start time")
	}

	event.Title = req.Title
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Location = req.Location
	event.Description = req.Description

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Delete removes an event the actor administers
func (s *EventService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if _, err := s.requireEventAdmin(ctx, actor, id); err != nil {
		return err
	}

	return s.eventRepo.Delete(ctx, id)
}
