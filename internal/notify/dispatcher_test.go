package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
)

type fakeOutbox struct {
	pending   []*models.AppointmentEvent
	processed []int64
	markErr   error
}

func (f *fakeOutbox) ListPending(_ context.Context, limit int) ([]*models.AppointmentEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkProcessed(_ context.Context, eventID int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.processed = append(f.processed, eventID)
	remaining := f.pending[:0]
	for _, event := range f.pending {
		if event.ID != eventID {
			remaining = append(remaining, event)
		}
	}
	f.pending = remaining
	return nil
}

type fakeAppointments struct {
	appointments map[int64]*models.Appointment
}

func (f *fakeAppointments) GetByID(_ context.Context, id int64) (*models.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok {
		return nil, errors.New("appointment not found")
	}
	return appointment, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakePublisher struct {
	published []*models.AppointmentEvent
	pubErr    error
	closed    bool
}

func (f *fakePublisher) Publish(_ context.Context, event *models.AppointmentEvent) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func testEvent(id int64, action models.AppointmentAction) *models.AppointmentEvent {
	return &models.AppointmentEvent{
		ID:            id,
		AppointmentID: 100,
		StudentID:     1,
		VIPID:         7,
		Action:        action,
		Recipient:     "visitor@umich.edu",
		OccurredAt:    time.Now(),
	}
}

func testAppointments() *fakeAppointments {
	return &fakeAppointments{appointments: map[int64]*models.Appointment{
		100: {
			ID:        100,
			ProgramID: 1,
			VIPID:     7,
			StartsAt:  time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC),
			EndsAt:    time.Date(2026, 3, 16, 10, 30, 0, 0, time.UTC),
			Location:  "Chem 1400",
			VIP:       &models.VIP{ID: 7, Name: "Dr. Lee"},
		},
	}}
}

func TestSweepDeliversAndMarksProcessed(t *testing.T) {
	outbox := &fakeOutbox{pending: []*models.AppointmentEvent{
		testEvent(1, models.ActionSelected),
		testEvent(2, models.ActionCancelled),
	}}
	mailer := &fakeMailer{}
	publisher := &fakePublisher{}

	d := NewDispatcher(outbox, testAppointments(), mailer, publisher, time.Second)
	d.Sweep(context.Background())

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "visitor@umich.edu", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "confirmed with Dr. Lee")
	assert.Contains(t, mailer.sent[0].body, "Chem 1400")
	assert.Contains(t, mailer.sent[1].subject, "cancelled with Dr. Lee")

	assert.Equal(t, []int64{1, 2}, outbox.processed)
	assert.Empty(t, outbox.pending)
	assert.Len(t, publisher.published, 2)
}

func TestSweepWithoutPublisher(t *testing.T) {
	outbox := &fakeOutbox{pending: []*models.AppointmentEvent{testEvent(1, models.ActionSelected)}}
	mailer := &fakeMailer{}

	d := NewDispatcher(outbox, testAppointments(), mailer, nil, time.Second)
	d.Sweep(context.Background())

	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, []int64{1}, outbox.processed)
}

func TestSweepLeavesEventPendingOnSendFailure(t *testing.T) {
	outbox := &fakeOutbox{pending: []*models.AppointmentEvent{testEvent(1, models.ActionSelected)}}
	mailer := &fakeMailer{sendErr: errors.New("smtp unavailable")}

	d := NewDispatcher(outbox, testAppointments(), mailer, nil, time.Second)
	d.Sweep(context.Background())

	assert.Empty(t, outbox.processed)
	require.Len(t, outbox.pending, 1)

	// Next sweep retries and succeeds
	mailer.sendErr = nil
	d.Sweep(context.Background())
	assert.Equal(t, []int64{1}, outbox.processed)
	assert.Len(t, mailer.sent, 1)
}

func TestSweepToleratesPublishFailure(t *testing.T) {
	outbox := &fakeOutbox{pending: []*models.AppointmentEvent{testEvent(1, models.ActionSelected)}}
	mailer := &fakeMailer{}
	publisher := &fakePublisher{pubErr: errors.New("broker down")}

	d := NewDispatcher(outbox, testAppointments(), mailer, publisher, time.Second)
	d.Sweep(context.Background())

	// Email went out and the event is done even though the queue publish failed
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, []int64{1}, outbox.processed)
}

func TestSweepRetriesWhenMarkProcessedFails(t *testing.T) {
	outbox := &fakeOutbox{
		pending: []*models.AppointmentEvent{testEvent(1, models.ActionSelected)},
		markErr: errors.New("db down"),
	}
	mailer := &fakeMailer{}

	d := NewDispatcher(outbox, testAppointments(), mailer, nil, time.Second)
	d.Sweep(context.Background())

	// Delivered but still pending; the next sweep sends a duplicate rather
	// than dropping the notification.
	assert.Len(t, mailer.sent, 1)
	require.Len(t, outbox.pending, 1)

	outbox.markErr = nil
	d.Sweep(context.Background())
	assert.Len(t, mailer.sent, 2)
	assert.Equal(t, []int64{1}, outbox.processed)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	outbox := &fakeOutbox{}
	d := NewDispatcher(outbox, testAppointments(), &fakeMailer{}, nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
