package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"spendwise/internal/log"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name        string
		ev          Event
		wantSubject string
		wantBody    string
	}{
		{"welcome", Event{Kind: KindWelcome, Recipient: "a@example.com", Username: "alice"}, "Welcome to SpendWise", "Hi alice,"},
		{"reset", Event{Kind: KindPasswordReset, Recipient: "a@example.com", Username: "alice", Link: "http://app/?reset_token=abc"}, "SpendWise Password Reset", "http://app/?reset_token=abc"},
		{"reset done", Event{Kind: KindPasswordResetDone, Recipient: "a@example.com"}, "Password Changed Successfully", "reset successfully"},
		{"changed", Event{Kind: KindPasswordChanged, Recipient: "a@example.com", Username: "alice"}, "Security Alert: Password Changed", "contact support"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Compose(tt.ev)
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if msg.To != tt.ev.Recipient || msg.Subject != tt.wantSubject || !strings.Contains(msg.Body, tt.wantBody) {
				t.Errorf("unexpected message %+v", msg)
			}
		})
	}
}

func TestComposeRejects(t *testing.T) {
	if _, err := Compose(Event{Kind: "sms", Recipient: "a@example.com"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: got %v", err)
	}
	if _, err := Compose(Event{Kind: KindPasswordReset, Recipient: "a@example.com"}); err == nil {
		t.Error("reset without link should fail")
	}
	if _, err := Compose(Event{Kind: KindWelcome}); err == nil {
		t.Error("missing recipient should fail")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.NewText(&buf, slog.LevelInfo, log.ComponentApp))
	if err := n.Notify(context.Background(), Event{Kind: KindWelcome, Recipient: "a@example.com", Username: "alice"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "notification_kind=welcome") {
		t.Errorf("log output %q", buf.String())
	}
}

func TestBuildMsg(t *testing.T) {
	email, err := buildMsg("noreply@example.com", Message{To: "a@example.com", Subject: "Hi", Body: "hello"})
	if err != nil {
		t.Fatalf("buildMsg: %v", err)
	}
	var buf bytes.Buffer
	if _, err := email.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	for _, want := range []string{"Subject: Hi", "a@example.com", "hello"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("message missing %q:\n%s", want, buf.String())
		}
	}
	if _, err := buildMsg("not an address", Message{To: "a@example.com"}); err == nil {
		t.Error("invalid sender should fail")
	}
}
