package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// ReportRowSource supplies the flattened schedule rows for a program
type ReportRowSource interface {
	ListReportRows(ctx context.Context, programID int64) ([]repositories.ReportRow, error)
}

// RosterRowSource supplies the enrolled-student rows for a program
type RosterRowSource interface {
	ListRosterRows(ctx context.Context, programID int64) ([]repositories.RosterRow, error)
}

// ProgramGetter resolves a program for department scoping
type ProgramGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Program, error)
}

// ReportService produces the CSV exports for a program: the appointment
// schedule with one line per slot, selected or not, grouped by VIP, and the
// student roster.
type ReportService struct {
	appointments ReportRowSource
	programs     ProgramGetter
	enrollments  RosterRowSource
}

// NewReportService creates a new report service
func NewReportService(appointments ReportRowSource, programs ProgramGetter, enrollments RosterRowSource) *ReportService {
	return &ReportService{
		appointments: appointments,
		programs:     programs,
		enrollments:  enrollments,
	}
}

var reportHeader = []string{
	"vip_name", "starts_at", "ends_at", "location", "state",
	"student_email", "student_first_name", "student_last_name",
}

// requireReportAccess loads the program and checks the actor administers its
// department.
func (s *ReportService) requireReportAccess(ctx context.Context, actor policy.Actor, programID int64) (*models.Program, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}
	return program, nil
}

// ScheduleCSV renders a program's full appointment schedule as CSV. The
// actor must administer the program's department.
func (s *ReportService) ScheduleCSV(ctx context.Context, actor policy.Actor, programID int64) ([]byte, string, error) {
	program, err := s.requireReportAccess(ctx, actor, programID)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.appointments.ListReportRows(ctx, programID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, "", fmt.Errorf("error writing report header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.VIPName, row.StartsAt, row.EndsAt, row.Location, row.State,
			row.StudentEmail, row.StudentFirstName, row.StudentLastName,
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("error writing report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("error flushing report: %w", err)
	}

	filename := fmt.Sprintf("%s-schedule.csv", program.Code)
	return buf.Bytes(), filename, nil
}

var rosterHeader = []string{
	"email", "first_name", "last_name", "enrolled_on", "selected_slots",
}

// RosterCSV renders a program's enrolled students as CSV, one line per
// student with their selected appointment count.
func (s *ReportService) RosterCSV(ctx context.Context, actor policy.Actor, programID int64) ([]byte, string, error) {
	program, err := s.requireReportAccess(ctx, actor, programID)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.enrollments.ListRosterRows(ctx, programID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(rosterHeader); err != nil {
		return nil, "", fmt.Errorf("error writing roster header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Email, row.FirstName, row.LastName, row.EnrolledAt,
			strconv.FormatInt(row.SelectedSlots, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("error writing roster row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("error flushing roster: %w", err)
	}

	filename := fmt.Sprintf("%s-roster.csv", program.Code)
	return buf.Bytes(), filename, nil
}
