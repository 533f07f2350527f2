// Package notify describes user-facing notifications and delivers them.
package notify

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/log"
)

type Kind string

const (
	KindWelcome           Kind = "welcome"
	KindPasswordReset     Kind = "password_reset"
	KindPasswordResetDone Kind = "password_reset_done"
	KindPasswordChanged   Kind = "password_changed"
)

var ErrUnknownKind = errors.New("unknown notification kind")

// Event is emitted after a successful account state change.
type Event struct {
	Kind      Kind   `json:"kind"`
	Recipient string `json:"recipient"`
	Username  string `json:"username"`
	Link      string `json:"link,omitempty"`
}

// Notifier delivers events. Callers log and swallow its errors.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Message is a rendered plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Compose renders the email for ev.
func Compose(ev Event) (Message, error) {
	msg := Message{To: ev.Recipient}
	switch ev.Kind {
	case KindWelcome:
		msg.Subject = "Welcome to SpendWise"
		msg.Body = fmt.Sprintf("Hi %s,\n\nWelcome to SpendWise! Your account has been successfully created.\nStart tracking your expenses today!", ev.Username)
	case KindPasswordReset:
		if ev.Link == "" {
			return Message{}, errors.New("password reset notification without link")
		}
		msg.Subject = "SpendWise Password Reset"
		msg.Body = fmt.Sprintf("Hi %s,\n\nClick the link below to reset your password:\n%s\n\nThis link expires in 15 minutes.", ev.Username, ev.Link)
	case KindPasswordResetDone:
		msg.Subject = "Password Changed Successfully"
		msg.Body = "Your SpendWise password has been reset successfully."
	case KindPasswordChanged:
		msg.Subject = "Security Alert: Password Changed"
		msg.Body = fmt.Sprintf("Hi %s,\n\nYour password was just changed. If this wasn't you, please contact support immediately.", ev.Username)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if msg.To == "" {
		return Message{}, errors.New("notification without recipient")
	}
	return msg, nil
}

// LogNotifier records events in the log instead of delivering them. It is
// used when no message broker is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	msg, err := Compose(ev)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "Notification not delivered, no broker configured",
		log.FieldNotification, string(ev.Kind),
		"recipient", msg.To,
		"subject", msg.Subject)
	return nil
}

// Recorder keeps events in memory.
type Recorder struct {
	Events []Event
	Err    error
}

func (r *Recorder) Notify(_ context.Context, ev Event) error {
	r.Events = append(r.Events, ev)
	return r.Err
}
