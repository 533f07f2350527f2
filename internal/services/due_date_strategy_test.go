package services

import (
	"errors"
	"testing"

	"spendwise/internal/core"
)

func TestDueDateAdvancers(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		due       core.Date
		want      core.Date
	}{
		{"daily", core.Daily, core.NewDate(2024, 12, 31), core.NewDate(2025, 1, 1)},
		{"weekly across month", core.Weekly, core.NewDate(2025, 1, 28), core.NewDate(2025, 2, 4)},
		{"monthly plain", core.Monthly, core.NewDate(2025, 3, 15), core.NewDate(2025, 4, 15)},
		{"monthly clamps to february", core.Monthly, core.NewDate(2025, 1, 31), core.NewDate(2025, 2, 28)},
		{"monthly leap february", core.Monthly, core.NewDate(2024, 1, 30), core.NewDate(2024, 2, 29)},
		{"monthly december rollover", core.Monthly, core.NewDate(2024, 12, 10), core.NewDate(2025, 1, 10)},
		{"yearly", core.Yearly, core.NewDate(2024, 6, 1), core.NewDate(2025, 6, 1)},
		{"yearly from leap day", core.Yearly, core.NewDate(2024, 2, 29), core.NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv, err := GetDueDateAdvancer(tt.frequency)
			if err != nil {
				t.Fatalf("GetDueDateAdvancer(%s): %v", tt.frequency, err)
			}
			if got := adv.Next(tt.due); !got.Equal(tt.want.Time) {
				t.Errorf("Next(%s) = %s, want %s", tt.due, got, tt.want)
			}
		})
	}
}

func TestGetDueDateAdvancerUnknown(t *testing.T) {
	if _, err := GetDueDateAdvancer("hourly"); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}
}
