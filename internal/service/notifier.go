// Package service holds glue between the booking ledger and
// external collaborators. The notifier renders email templates and
// publishes the result to RabbitMQ; actual delivery is someone
// else's job.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/queue"
	"github.com/DJaayy/slot-booking/internal/repository"
)

// Notifier publishes notification events for booking and status
// changes. Every method is best-effort: failures are logged and
// swallowed so a broker outage never fails a booking.
type Notifier struct {
	store repository.Store
	url   string
	log   *zap.Logger
}

// NewNotifier returns a Notifier publishing to the broker at url.
// An empty url disables publishing entirely.
func NewNotifier(store repository.Store, url string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{store: store, url: url, log: log}
}

// ReleaseBooked renders the default booking template for the new
// release and publishes a ReleaseBookedEvent.
func (n *Notifier) ReleaseBooked(ctx context.Context, rel *model.Release, slot *model.Slot) {
	if n.url == "" {
		return
	}
	vars := map[string]string{
		"releaseName": rel.Name,
		"team":        rel.Team,
		"date":        slot.Date.Format("2006-01-02"),
		"timeDetail":  slot.TimeDetail,
	}
	subject, body := n.render(ctx, model.CategoryBooking, vars)
	event := queue.ReleaseBookedEvent{
		ReleaseID:   rel.ID,
		ReleaseName: rel.Name,
		Team:        rel.Team,
		ReleaseType: rel.ReleaseType,
		SlotID:      slot.ID,
		SlotDate:    slot.Date.Format("2006-01-02"),
		SlotWindow:  slot.TimeDetail,
		Subject:     subject,
		Body:        body,
		BookedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := n.publish(ctx, queue.ReleaseBookedQueue, event); err != nil {
		n.log.Warn("failed to publish booking notification",
			zap.Uint64("release_id", rel.ID), zap.Error(err))
	}
}

// StatusChanged renders the default status-update template and
// publishes a ReleaseStatusEvent.
func (n *Notifier) StatusChanged(ctx context.Context, rel *model.Release) {
	if n.url == "" {
		return
	}
	vars := map[string]string{
		"releaseName": rel.Name,
		"team":        rel.Team,
		"status":      string(rel.Status),
		"comments":    rel.Comments,
	}
	subject, body := n.render(ctx, model.CategoryStatusUpdate, vars)
	event := queue.ReleaseStatusEvent{
		ReleaseID:   rel.ID,
		ReleaseName: rel.Name,
		Team:        rel.Team,
		Status:      string(rel.Status),
		Comments:    rel.Comments,
		Subject:     subject,
		Body:        body,
		ChangedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := n.publish(ctx, queue.ReleaseStatusQueue, event); err != nil {
		n.log.Warn("failed to publish status notification",
			zap.Uint64("release_id", rel.ID), zap.Error(err))
	}
}

// render picks the default template of the category and substitutes
// vars. When no template exists the event still goes out, with
// empty subject and body.
func (n *Notifier) render(ctx context.Context, category string, vars map[string]string) (subject, body string) {
	templates, err := n.store.GetEmailTemplates(ctx, category)
	if err != nil {
		n.log.Warn("failed to load notification template",
			zap.String("category", category), zap.Error(err))
		return "", ""
	}
	for _, t := range templates {
		if t.IsDefault {
			return t.Render(vars)
		}
	}
	return "", ""
}

// publish declares the durable queue and sends one persistent JSON
// message to it. The connection is established per publish; traffic
// is a handful of messages per day.
func (n *Notifier) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
