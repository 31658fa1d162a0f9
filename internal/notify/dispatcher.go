// Package notify delivers appointment change notifications. Events are read
// from the transactional outbox, emailed to the affected student, optionally
// published to RabbitMQ, and stamped processed. Delivery failures leave the
// row pending so the next sweep retries it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/pkg/email"
	"github.com/lsa-mis/student-visit-api/internal/pkg/errtrack"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

const sweepBatchSize = 50

var (
	eventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_events_dispatched_total",
		Help: "Appointment events delivered, by action.",
	}, []string{"action"})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_events_failed_total",
		Help: "Appointment event delivery failures.",
	})

	eventsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notify_events_pending",
		Help: "Outbox rows awaiting delivery at the last sweep.",
	})
)

// OutboxSource is the dispatcher's view of the outbox
type OutboxSource interface {
	ListPending(ctx context.Context, limit int) ([]*models.AppointmentEvent, error)
	MarkProcessed(ctx context.Context, eventID int64) error
}

// AppointmentSource resolves event rows to slot details for rendering
type AppointmentSource interface {
	GetByID(ctx context.Context, id int64) (*models.Appointment, error)
}

// Dispatcher sweeps the outbox on an interval
type Dispatcher struct {
	outbox       OutboxSource
	appointments AppointmentSource
	mailer       email.Service
	publisher    Publisher // nil when AMQP is not configured
	interval     time.Duration
}

// NewDispatcher creates a new outbox dispatcher. publisher may be nil.
func NewDispatcher(
	outbox OutboxSource,
	appointments AppointmentSource,
	mailer email.Service,
	publisher Publisher,
	interval time.Duration,
) *Dispatcher {
	return &Dispatcher{
		outbox:       outbox,
		appointments: appointments,
		mailer:       mailer,
		publisher:    publisher,
		interval:     interval,
	}
}

// Run sweeps until the context is cancelled. Blocks; run it in a goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info().Dur("interval", d.interval).Msg("Notification dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Notification dispatcher stopped")
			return
		case <-ticker.C:
			d.Sweep(ctx)
		}
	}
}

// Sweep processes one batch of pending events
func (d *Dispatcher) Sweep(ctx context.Context) {
	events, err := d.outbox.ListPending(ctx, sweepBatchSize)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list pending events")
		errtrack.Error(err)
		return
	}

	eventsPending.Set(float64(len(events)))

	for _, event := range events {
		if err := d.deliver(ctx, event); err != nil {
			logger.Error().Err(err).Int64("eventId", event.ID).Msg("Failed to deliver event")
			errtrack.Error(err, map[string]interface{}{"eventId": event.ID})
			eventsFailed.Inc()
			continue
		}

		if err := d.outbox.MarkProcessed(ctx, event.ID); err != nil {
			// The event was delivered but stays pending; the next sweep will
			// redeliver. Duplicate email beats lost email.
			logger.Error().Err(err).Int64("eventId", event.ID).Msg("Failed to mark event processed")
			errtrack.Error(err)
			continue
		}

		eventsDispatched.WithLabelValues(string(event.Action)).Inc()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event *models.AppointmentEvent) error {
	appointment, err := d.appointments.GetByID(ctx, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment %d: %w", event.AppointmentID, err)
	}

	subject, body := renderEmail(event, appointment)
	if err := d.mailer.Send(event.Recipient, subject, body); err != nil {
		return err
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, event); err != nil {
			// Email is the delivery that matters; the queue is a best-effort
			// feed for downstream consumers.
			logger.Warn().Err(err).Int64("eventId", event.ID).Msg("Failed to publish event")
		}
	}

	return nil
}

func renderEmail(event *models.AppointmentEvent, appointment *models.Appointment) (subject, body string) {
	vipName := "your host"
	if appointment.VIP != nil {
		vipName = appointment.VIP.Name
	}
	when := appointment.StartsAt.Format("Monday, January 2 at 3:04 PM")

	switch event.Action {
	case models.ActionSelected:
		subject = fmt.Sprintf("Appointment confirmed with %s", vipName)
		body = fmt.Sprintf(
			"Your appointment with %s is confirmed for %s.\nLocation: %s\n",
			vipName, when, appointment.Location)
	case models.ActionCancelled:
		subject = fmt.Sprintf("Appointment cancelled with %s", vipName)
		body = fmt.Sprintf(
			"Your appointment with %s on %s has been cancelled. The slot is open again if you change your mind.\n",
			vipName, when)
	default:
		subject = "Appointment update"
		body = fmt.Sprintf("Your appointment with %s on %s has changed.\n", vipName, when)
	}
	return subject, body
}
