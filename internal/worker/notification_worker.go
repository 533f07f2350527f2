// Package worker holds the message handlers run by the background binaries.
package worker

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/notify"
)

const (
	sendTimeout = 30 * time.Second
	// Redeliveries of an already sent message within this window are acknowledged without sending.
	sentWindow = time.Hour
)

// NotificationWorker turns queued notification messages into emails.
type NotificationWorker struct {
	mailer notify.Mailer
	sent   *cache.LRUCache[struct{}]
	logger *log.Logger
}

func NewNotificationWorker(mailer notify.Mailer, logger *log.Logger) *NotificationWorker {
	return &NotificationWorker{
		mailer: mailer,
		sent:   cache.NewLRUCache[struct{}](10000, sentWindow),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleNotification renders and sends msg. Messages that can never be
// rendered are logged and dropped by returning nil; delivery failures are
// returned so the broker requeues the message.
func (w *NotificationWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.ID != "" {
		if _, done := w.sent.Get(msg.ID); done {
			w.logger.InfoContext(ctx, "Skipping already delivered notification", log.FieldMessageID, msg.ID)
			return nil
		}
	}

	email, err := notify.Compose(msg.Event())
	if err != nil {
		w.logger.ErrorContext(ctx, "Dropping undeliverable notification",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeValidation).
				WithOperation(log.OpConsume).
				ToSlice()...)
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.mailer.Send(sendCtx, email); err != nil {
		return fmt.Errorf("send %s notification: %w", msg.Kind, err)
	}

	if msg.ID != "" {
		w.sent.Set(msg.ID, struct{}{})
	}
	w.logger.InfoContext(ctx, "Notification sent",
		log.FieldMessageID, msg.ID,
		log.FieldNotification, string(msg.Kind))
	return nil
}
