package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// In-memory stores with the same conditional update semantics as the real
// repositories, so the controller tests run the full service path.

type memAppointmentStore struct {
	mu    sync.Mutex
	slots map[int64]*models.Appointment
}

func (s *memAppointmentStore) clone(a *models.Appointment) *models.Appointment {
	copied := *a
	if a.StudentID != nil {
		id := *a.StudentID
		copied.StudentID = &id
	}
	return &copied
}

func (s *memAppointmentStore) GetByID(_ context.Context, id int64) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	return s.clone(slot), nil
}

func (s *memAppointmentStore) ListAvailable(_ context.Context, programID int64, vipID *int64) ([]*models.Appointment, error) {
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

func (s *memAppointmentStore) ListSelectedByStudent(_ context.Context, studentID, programID int64) ([]*models.Appointment, error) {
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

func (s *memAppointmentStore) HasSelectedWithVIP(_ context.Context, studentID, vipID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.VIPID == vipID && slot.HeldBy(studentID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memAppointmentStore) Select(_ context.Context, appointmentID, studentID int64, _ string) (*models.Appointment, error) {
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

func (s *memAppointmentStore) Cancel(_ context.Context, appointmentID, studentID int64, _ string) (*models.Appointment, error) {
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

type memEnrollmentStore struct {
	enrolled map[[2]int64]bool
}

func (s *memEnrollmentStore) IsEnrolled(_ context.Context, programID, userID int64) (bool, error) {
	return s.enrolled[[2]int64{programID, userID}], nil
}

type memStudentDirectory struct{}

func (memStudentDirectory) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Email: "visitor@umich.edu", RoleType: models.RoleStudent, IsActive: true}, nil
}

// withActor injects an authenticated actor the way the auth middleware does.
func withActor(actor policy.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

func newBookingRouter(actor policy.Actor) (*gin.Engine, *memAppointmentStore) {
	gin.SetMode(gin.TestMode)

	start := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	store := &memAppointmentStore{slots: map[int64]*models.Appointment{
		100: {ID: 100, ProgramID: 1, VIPID: 7, StartsAt: start, EndsAt: start.Add(30 * time.Minute)},
	}}
	enrollments := &memEnrollmentStore{enrolled: map[[2]int64]bool{
		{1, 1}: true,
		{1, 2}: true,
	}}

	svc := services.NewBookingService(store, enrollments, memStudentDirectory{})
	controller := NewAppointmentController(svc)

	router := gin.New()
	router.Use(withActor(actor))
	router.GET("/api/v1/programs/:id/appointments/available", controller.ListAvailable)
	router.GET("/api/v1/programs/:id/appointments/mine", controller.ListMine)
	router.POST("/api/v1/appointments/:id/select", controller.Select)
	router.DELETE("/api/v1/appointments/:id", controller.Cancel)
	return router, store
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestSelectEndpoint(t *testing.T) {
	student := policy.NewActor(1, models.RoleStudent, nil)
	router, store := newBookingRouter(student)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			ID        int64  `json:"id"`
			StudentID *int64 `json:"studentId"`
			State     string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(100), body.Data.ID)
	require.NotNil(t, body.Data.StudentID)
	assert.Equal(t, int64(1), *body.Data.StudentID)
	assert.Equal(t, "SELECTED", body.Data.State)

	persisted, err := store.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, persisted.HeldBy(1))
}

func TestSelectEndpointConflict(t *testing.T) {
	first := policy.NewActor(1, models.RoleStudent, nil)
	router, store := newBookingRouter(first)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	require.Equal(t, http.StatusOK, w.Code)

	// A second student hitting the same slot loses with 409
	loser := doRequestAs(t, store, policy.NewActor(2, models.RoleStudent, nil), http.MethodPost, "/api/v1/appointments/100/select")
	assert.Equal(t, http.StatusConflict, loser.Code)
	assert.Equal(t, "BOOK_001", errorCode(t, loser))
}

// doRequestAs runs a request against a router built around an existing store
func doRequestAs(t *testing.T, store *memAppointmentStore, actor policy.Actor, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	enrollments := &memEnrollmentStore{enrolled: map[[2]int64]bool{
		{1, 1}: true,
		{1, 2}: true,
	}}
	svc := services.NewBookingService(store, enrollments, memStudentDirectory{})
	controller := NewAppointmentController(svc)

	router := gin.New()
	router.Use(withActor(actor))
	router.GET("/api/v1/programs/:id/appointments/available", controller.ListAvailable)
	router.POST("/api/v1/appointments/:id/select", controller.Select)
	router.DELETE("/api/v1/appointments/:id", controller.Cancel)

	return doRequest(t, router, method, path)
}

func TestCancelEndpointNotOwner(t *testing.T) {
	student := policy.NewActor(1, models.RoleStudent, nil)
	router, store := newBookingRouter(student)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	require.Equal(t, http.StatusOK, w.Code)

	other := doRequestAs(t, store, policy.NewActor(2, models.RoleStudent, nil), http.MethodDelete, "/api/v1/appointments/100")
	assert.Equal(t, http.StatusForbidden, other.Code)
	assert.Equal(t, "BOOK_003", errorCode(t, other))

	// The holder can still cancel
	own := doRequest(t, router, http.MethodDelete, "/api/v1/appointments/100")
	assert.Equal(t, http.StatusOK, own.Code)
}

func TestSelectEndpointNotEnrolled(t *testing.T) {
	stranger := policy.NewActor(30, models.RoleStudent, nil)
	router, _ := newBookingRouter(stranger)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "BOOK_002", errorCode(t, w))
}

func TestSelectEndpointUnauthenticated(t *testing.T) {
	router, _ := newBookingRouter(policy.Anonymous)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSelectEndpointUnknownAppointment(t *testing.T) {
	student := policy.NewActor(1, models.RoleStudent, nil)
	router, _ := newBookingRouter(student)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/999/select")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectEndpointRejectsBadID(t *testing.T) {
	student := policy.NewActor(1, models.RoleStudent, nil)
	router, _ := newBookingRouter(student)

	w := doRequest(t, router, http.MethodPost, "/api/v1/appointments/abc/select")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/appointments/0/select")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAvailableEndpoint(t *testing.T) {
	student := policy.NewActor(1, models.RoleStudent, nil)
	router, _ := newBookingRouter(student)

	w := doRequest(t, router, http.MethodGet, "/api/v1/programs/1/appointments/available")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(100), body.Data[0].ID)

	// Booking the slot removes it from the available list
	booked := doRequest(t, router, http.MethodPost, "/api/v1/appointments/100/select")
	require.Equal(t, http.StatusOK, booked.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/programs/1/appointments/available")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Data)

	mine := doRequest(t, router, http.MethodGet, "/api/v1/programs/1/appointments/mine")
	require.Equal(t, http.StatusOK, mine.Code)
}
