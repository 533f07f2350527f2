package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/notify"
)

// NotificationMessage is the queued form of a notify.Event.
type NotificationMessage struct {
	ID        string      `json:"id"`
	Kind      notify.Kind `json:"kind"`
	Recipient string      `json:"recipient"`
	Username  string      `json:"username"`
	Link      string      `json:"link,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewNotificationMessage wraps ev with a fresh message id.
func NewNotificationMessage(ev notify.Event) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      ev.Kind,
		Recipient: ev.Recipient,
		Username:  ev.Username,
		Link:      ev.Link,
		Timestamp: time.Now(),
	}
}

// Event converts the message back to the event it carries.
func (m *NotificationMessage) Event() notify.Event {
	return notify.Event{Kind: m.Kind, Recipient: m.Recipient, Username: m.Username, Link: m.Link}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
