package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// fakeAppointmentStore keeps slots in memory and reproduces the conditional
// update semantics of the real repository: attach only when unheld, detach
// only for the current holder. A mutex guards the state so the race test can
// hammer it from many goroutines.
type fakeAppointmentStore struct {
	mu    sync.Mutex
	slots map[int64]*models.Appointment
}

func newFakeAppointmentStore(slots ...*models.Appointment) *fakeAppointmentStore {
	s := &fakeAppointmentStore{slots: make(map[int64]*models.Appointment)}
	for _, slot := range slots {
		s.slots[slot.ID] = slot
	}
	return s
}

func (s *fakeAppointmentStore) clone(a *models.Appointment) *models.Appointment {
	copied := *a
	if a.StudentID != nil {
		id := *a.StudentID
		copied.StudentID = &id
	}
	return &copied
}

func (s *fakeAppointmentStore) GetByID(_ context.Context, id int64) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	return s.clone(slot), nil
}

func (s *fakeAppointmentStore) ListAvailable(_ context.Context, programID int64, vipID *int64) ([]*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Appointment
	for _, slot := range s.slots {
		if slot.ProgramID != programID || slot.StudentID != nil {
			continue
		}
		if vipID != nil && slot.VIPID != *vipID {
			continue
		}
		out = append(out, s.clone(slot))
	}
	return out, nil
}

func (s *fakeAppointmentStore) ListSelectedByStudent(_ context.Context, studentID, programID int64) ([]*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Appointment
	for _, slot := range s.slots {
		if slot.ProgramID == programID && slot.HeldBy(studentID) {
			out = append(out, s.clone(slot))
		}
	}
	return out, nil
}

func (s *fakeAppointmentStore) HasSelectedWithVIP(_ context.Context, studentID, vipID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.VIPID == vipID && slot.HeldBy(studentID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAppointmentStore) Select(_ context.Context, appointmentID, studentID int64, _ string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[appointmentID]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	if slot.StudentID != nil {
		return nil, apperrors.ErrSlotAlreadyTaken
	}
	slot.StudentID = &studentID
	return s.clone(slot), nil
}

func (s *fakeAppointmentStore) Cancel(_ context.Context, appointmentID, studentID int64, _ string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[appointmentID]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	if !slot.HeldBy(studentID) {
		return nil, apperrors.ErrNotOwner
	}
	slot.StudentID = nil
	return s.clone(slot), nil
}

type fakeEnrollmentStore struct {
	enrolled map[[2]int64]bool // (programID, userID)
}

func (s *fakeEnrollmentStore) IsEnrolled(_ context.Context, programID, userID int64) (bool, error) {
	return s.enrolled[[2]int64{programID, userID}], nil
}

type fakeStudentDirectory struct {
	users map[int64]*models.User
}

func (s *fakeStudentDirectory) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

const (
	testProgramID = int64(1)
	testVIPID     = int64(7)
)

func slot(id int64) *models.Appointment {
	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	return &models.Appointment{
		ID:        id,
		ProgramID: testProgramID,
		VIPID:     testVIPID,
		StartsAt:  start,
		EndsAt:    start.Add(30 * time.Minute),
		Location:  "1100 North University Building",
	}
}

func studentActor(id int64) policy.Actor {
	return policy.NewActor(id, models.RoleStudent, nil)
}

func newBookingFixture(slots ...*models.Appointment) (*BookingService, *fakeAppointmentStore, *fakeEnrollmentStore) {
	appointments := newFakeAppointmentStore(slots...)
	enrollments := &fakeEnrollmentStore{enrolled: map[[2]int64]bool{}}
	students := &fakeStudentDirectory{users: map[int64]*models.User{}}
	for id := int64(1); id <= 50; id++ {
		students.users[id] = &models.User{ID: id, Email: "student@umich.edu", RoleType: models.RoleStudent, IsActive: true}
	}
	return NewBookingService(appointments, enrollments, students), appointments, enrollments
}

func TestSelectBooksAvailableSlot(t *testing.T) {
	svc, store, enrollments := newBookingFixture(slot(100))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	booked, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)
	require.NotNil(t, booked.StudentID)
	assert.Equal(t, int64(1), *booked.StudentID)

	persisted, err := store.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, persisted.HeldBy(1))
}

func TestSelectRequiresEnrollment(t *testing.T) {
	svc, _, _ := newBookingFixture(slot(100))

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestSelectTakenSlot(t *testing.T) {
	taken := slot(100)
	holder := int64(2)
	taken.StudentID = &holder

	svc, _, enrollments := newBookingFixture(taken)
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	assert.ErrorIs(t, err, apperrors.ErrSlotAlreadyTaken)
}

func TestSelectOwnSlotAgainIsDuplicate(t *testing.T) {
	svc, _, enrollments := newBookingFixture(slot(100))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), studentActor(1), 100)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)
}

func TestSelectSecondSlotWithSameVIPIsDuplicate(t *testing.T) {
	svc, _, enrollments := newBookingFixture(slot(100), slot(101))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), studentActor(1), 101)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)
}

func TestSelectAuthorization(t *testing.T) {
	svc, _, _ := newBookingFixture(slot(100))

	_, err := svc.Select(context.Background(), policy.Anonymous, 100)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	admin := policy.NewActor(9, models.RoleDepartmentAdmin, nil)
	_, err = svc.Select(context.Background(), admin, 100)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCancelReleasesSlot(t *testing.T) {
	svc, store, enrollments := newBookingFixture(slot(100))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), studentActor(1), 100)
	require.NoError(t, err)
	assert.Nil(t, cancelled.StudentID)

	// The slot is bookable again after cancellation
	enrollments.enrolled[[2]int64{testProgramID, 2}] = true
	rebooked, err := svc.Select(context.Background(), studentActor(2), 100)
	require.NoError(t, err)
	assert.True(t, rebooked.HeldBy(2))

	persisted, err := store.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, persisted.HeldBy(2))
}

func TestCancelSomeoneElsesSlot(t *testing.T) {
	svc, _, enrollments := newBookingFixture(slot(100))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), studentActor(2), 100)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}

func TestConcurrentSelectHasOneWinner(t *testing.T) {
	const contenders = 20

	svc, store, enrollments := newBookingFixture(slot(100))
	for id := int64(1); id <= contenders; id++ {
		enrollments.enrolled[[2]int64{testProgramID, id}] = true
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Select(context.Background(), studentActor(int64(i+1)), 100)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			// Losers see the slot as taken whichever check they lost at
			assert.ErrorIs(t, err, apperrors.ErrSlotAlreadyTaken)
		}
	}
	assert.Equal(t, 1, winners)

	persisted, err := store.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.NotNil(t, persisted.StudentID)
}

func TestListAvailableRequiresEnrollment(t *testing.T) {
	svc, _, enrollments := newBookingFixture(slot(100), slot(101))

	_, err := svc.ListAvailable(context.Background(), studentActor(1), testProgramID, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	enrollments.enrolled[[2]int64{testProgramID, 1}] = true
	available, err := svc.ListAvailable(context.Background(), studentActor(1), testProgramID, nil)
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestListMineReturnsOnlyHeldSlots(t *testing.T) {
	svc, _, enrollments := newBookingFixture(slot(100), slot(101))
	enrollments.enrolled[[2]int64{testProgramID, 1}] = true

	_, err := svc.Select(context.Background(), studentActor(1), 100)
	require.NoError(t, err)

	mine, err := svc.ListMine(context.Background(), studentActor(1), testProgramID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(100), mine[0].ID)

	other, err := svc.ListMine(context.Background(), studentActor(2), testProgramID)
	require.NoError(t, err)
	assert.Empty(t, other)
}
