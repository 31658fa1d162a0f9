package services

import (
	"context"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// DepartmentService handles department management. Departments are a
// super-admin surface; department admins only read their own.
type DepartmentService struct {
	departmentRepo *repositories.DepartmentRepository
}

// NewDepartmentService creates a new department service
func NewDepartmentService(departmentRepo *repositories.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departmentRepo: departmentRepo}
}

// Create adds a department. Super admin only.
func (s *DepartmentService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := authorize(actor, actor.IsSuperAdmin()); err != nil {
		return nil, err
	}

	dept, err := s.departmentRepo.Create(ctx, &models.Department{Name: req.Name, Code: req.Code})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("departmentId", dept.ID).Str("code", dept.Code).Msg("Department created")
	return dept, nil
}

// Get retrieves a department the actor may see
func (s *DepartmentService) Get(ctx context.Context, actor policy.Actor, id int64) (*models.Department, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(id) {
		return nil, apperrors.ErrPermissionDenied
	}

	return s.departmentRepo.GetByID(ctx, id)
}

// List retrieves all departments. Super admin only.
func (s *DepartmentService) List(ctx context.Context, actor policy.Actor) ([]*models.Department, error) {
	if err := authorize(actor, actor.IsSuperAdmin()); err != nil {
		return nil, err
	}

	return s.departmentRepo.List(ctx)
}

// Update modifies a department. Super admin only.
func (s *DepartmentService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	if err := authorize(actor, actor.IsSuperAdmin()); err != nil {
		return nil, err
	}

	dept := &models.Department{ID: id, Name: req.Name, Code: req.Code}
	if err := s.departmentRepo.Update(ctx, dept); err != nil {
		return nil, err
	}

	return dept, nil
}

// Delete removes a department. Super admin only.
func (s *DepartmentService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := authorize(actor, actor.IsSuperAdmin()); err != nil {
		return err
	}

	return s.departmentRepo.Delete(ctx, id)
}
