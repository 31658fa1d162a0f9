package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

type fakeReportRowSource struct {
	rows []repositories.ReportRow
}

func (s *fakeReportRowSource) ListReportRows(_ context.Context, _ int64) ([]repositories.ReportRow, error) {
	return s.rows, nil
}

type fakeProgramGetter struct {
	programs map[int64]*models.Program
}

func (s *fakeProgramGetter) GetByID(_ context.Context, id int64) (*models.Program, error) {
	program, ok := s.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	return program, nil
}

type fakeRosterRowSource struct {
	rows []repositories.RosterRow
}

func (s *fakeRosterRowSource) ListRosterRows(_ context.Context, _ int64) ([]repositories.RosterRow, error) {
	return s.rows, nil
}

func newReportFixture(rows ...repositories.ReportRow) *ReportService {
	return NewReportService(
		&fakeReportRowSource{rows: rows},
		&fakeProgramGetter{programs: map[int64]*models.Program{
			1: {ID: 1, DepartmentID: 10, Name: "Chemistry Visit Weekend", Code: "CHEM-2026"},
		}},
		&fakeRosterRowSource{rows: []repositories.RosterRow{
			{Email: "visitor@umich.edu", FirstName: "Jordan", LastName: "Park", EnrolledAt: "2026-02-01", SelectedSlots: 2},
			{Email: "other@umich.edu", FirstName: "Sam", LastName: "Rivera", EnrolledAt: "2026-02-03", SelectedSlots: 0},
		}},
	)
}

func TestScheduleCSVContent(t *testing.T) {
	svc := newReportFixture(
		repositories.ReportRow{
			VIPName:  "Dr. Lee",
			StartsAt: "2026-03-16 10:00",
			EndsAt:   "2026-03-16 10:30",
			Location: "Chem 1400",
			State:    "SELECTED",

			StudentEmail:     "visitor@umich.edu",
			StudentFirstName: "Jordan",
			StudentLastName:  "Park",
		},
		repositories.ReportRow{
			VIPName:  "Dr. Lee",
			StartsAt: "2026-03-16 10:30",
			EndsAt:   "2026-03-16 11:00",
			Location: "Chem 1400",
			State:    "AVAILABLE",
		},
	)

	superAdmin := policy.NewActor(1, models.RoleSuperAdmin, nil)
	data, filename, err := svc.ScheduleCSV(context.Background(), superAdmin, 1)
	require.NoError(t, err)
	assert.Equal(t, "CHEM-2026-schedule.csv", filename)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, []string{
		"Dr. Lee", "2026-03-16 10:00", "2026-03-16 10:30", "Chem 1400", "SELECTED",
		"visitor@umich.edu", "Jordan", "Park",
	}, records[1])
	// Unselected slots export with empty student columns
	assert.Equal(t, "AVAILABLE", records[2][4])
	assert.Equal(t, "", records[2][5])
}

func TestRosterCSVContent(t *testing.T) {
	svc := newReportFixture()

	superAdmin := policy.NewActor(1, models.RoleSuperAdmin, nil)
	data, filename, err := svc.RosterCSV(context.Background(), superAdmin, 1)
	require.NoError(t, err)
	assert.Equal(t, "CHEM-2026-roster.csv", filename)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, rosterHeader, records[0])
	assert.Equal(t, []string{"visitor@umich.edu", "Jordan", "Park", "2026-02-01", "2"}, records[1])
	assert.Equal(t, []string{"other@umich.edu", "Sam", "Rivera", "2026-02-03", "0"}, records[2])
}

func TestRosterCSVDeniesStudents(t *testing.T) {
	svc := newReportFixture()

	student := policy.NewActor(4, models.RoleStudent, nil)
	_, _, err := svc.RosterCSV(context.Background(), student, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestScheduleCSVDepartmentScoping(t *testing.T) {
	svc := newReportFixture()

	ownDept := int64(10)
	otherDept := int64(11)

	owner := policy.NewActor(2, models.RoleDepartmentAdmin, &ownDept)
	_, _, err := svc.ScheduleCSV(context.Background(), owner, 1)
	assert.NoError(t, err)

	outsider := policy.NewActor(3, models.RoleDepartmentAdmin, &otherDept)
	_, _, err = svc.ScheduleCSV(context.Background(), outsider, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	student := policy.NewActor(4, models.RoleStudent, nil)
	_, _, err = svc.ScheduleCSV(context.Background(), student, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, _, err = svc.ScheduleCSV(context.Background(), policy.Anonymous, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestScheduleCSVUnknownProgram(t *testing.T) {
	svc := newReportFixture()

	superAdmin := policy.NewActor(1, models.RoleSuperAdmin, nil)
	_, _, err := svc.ScheduleCSV(context.Background(), superAdmin, 999)
	assert.ErrorIs(t, err, apperrors.ErrProgramNotFound)
}
