package services

import (
	"context"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/helpers"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// ProgramService handles visit program management. Write operations are
// scoped to the owning department: a department admin manages only their own
// department's programs, a super admin manages all of them.
type ProgramService struct {
	programRepo    *repositories.ProgramRepository
	enrollmentRepo *repositories.EnrollmentRepository
	userRepo       *repositories.UserRepository
}

// NewProgramService creates a new program service
func NewProgramService(
	programRepo *repositories.ProgramRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
	userRepo *repositories.UserRepository,
) *ProgramService {
	return &ProgramService{
		programRepo:    programRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
	}
}

// requireProgramAdmin loads a program and checks the actor administers its
// department.
func (s *ProgramService) requireProgramAdmin(ctx context.Context, actor policy.Actor, programID int64) (*models.Program, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	return program, nil
}

// Create adds a program under a department the actor administers
func (s *ProgramService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateProgramRequest) (*models.Program, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(req.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	program := &models.Program{
		DepartmentID:  req.DepartmentID,
		Name:          req.Name,
		Code:          req.Code,
		VisitStartsOn: req.VisitStartsOn,
		VisitEndsOn:   req.VisitEndsOn,
	}

	created, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("programId", created.ID).Str("code", created.Code).Msg("Program created")
	return created, nil
}

// Get retrieves a program. Admins see programs they manage; students see
// programs they are enrolled in.
func (s *ProgramService) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Program, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		if !actor.ManagesDepartment(program.DepartmentID) {
			return nil, apperrors.ErrPermissionDenied
		}
		return program, nil
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	return program, nil
}

// ListForDepartment retrieves a department's programs for an admin
func (s *ProgramService) ListForDepartment(ctx context.Context, actor policy.Actor, departmentID int64) ([]*models.Program, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(departmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	return s.programRepo.ListByDepartment(ctx, departmentID)
}

// ListMine retrieves the programs the acting student is enrolled in
func (s *ProgramService) ListMine(ctx context.Context, actor policy.Actor) ([]*models.Program, error) {
	if err := authorize(actor, actor.IsStudent()); err != nil {
		return nil, err
	}

	return s.enrollmentRepo.ListProgramsForStudent(ctx, actor.UserID)
}

// Update modifies a program the actor administers
func (s *ProgramService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateProgramRequest) (*models.Program, error) {
	program, err := s.requireProgramAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	program.Name = req.Name
	program.Code = req.Code
	program.VisitStartsOn = req.VisitStartsOn
	program.VisitEndsOn = req.VisitEndsOn

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}

	return program, nil
}

// Delete removes a program the actor administers
func (s *ProgramService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if _, err := s.requireProgramAdmin(ctx, actor, id); err != nil {
		return err
	}

	return s.programRepo.Delete(ctx, id)
}

// Enroll adds a student to a program the actor administers. The target user
// must exist and hold the student role.
func (s *ProgramService) Enroll(ctx context.Context, actor policy.Actor, programID, userID int64) (*models.Enrollment, error) {
	if _, err := s.requireProgramAdmin(ctx, actor, programID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.RoleType != models.RoleStudent {
		return nil, apperrors.NewBadRequestError("only students can be enrolled in a program")
	}

	enrollment, err := s.enrollmentRepo.Create(ctx, programID, userID)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("programId", programID).Int64("userId", userID).Msg("Student enrolled")
	return enrollment, nil
}

// Unenroll removes a student from a program the actor administers
func (s *ProgramService) Unenroll(ctx context.Context, actor policy.Actor, programID, userID int64) error {
	if _, err := s.requireProgramAdmin(ctx, actor, programID); err != nil {
		return err
	}

	return s.enrollmentRepo.Delete(ctx, programID, userID)
}

// ListEnrollments retrieves a page of a program's roster for an admin
func (s *ProgramService) ListEnrollments(ctx context.Context, actor policy.Actor, programID int64, page, size int) ([]*models.Enrollment, dto.PaginationInfo, error) {
	if _, err := s.requireProgramAdmin(ctx, actor, programID); err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	total, err := s.enrollmentRepo.CountByProgram(ctx, programID)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	enrollments, err := s.enrollmentRepo.ListByProgram(ctx, programID, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return enrollments, helpers.NewPaginationInfo(total, page, limit), nil
}
