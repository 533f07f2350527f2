// One strategy per recurrence frequency, each moving a recurring
// expense's due date forward by one period.

package services

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// DueDateAdvancer computes the due date following due.
type DueDateAdvancer interface {
	Next(due core.Date) core.Date
}

type DailyAdvancer struct{}

func (DailyAdvancer) Next(due core.Date) core.Date { return due.AddDays(1) }

type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(due core.Date) core.Date { return due.AddDays(7) }

// MonthlyAdvancer moves to the same day next month, clamped to the last
// day when the next month is shorter (Jan 31 -> Feb 28).
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(due core.Date) core.Date { return addMonthsClamped(due, 1) }

// YearlyAdvancer moves to the same day next year; Feb 29 becomes Feb 28.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(due core.Date) core.Date { return addMonthsClamped(due, 12) }

func addMonthsClamped(d core.Date, months int) core.Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), first.Month(), day)
}

// dueDateStrategies maps each frequency to its advancer.
var dueDateStrategies = map[core.Frequency]DueDateAdvancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetDueDateAdvancer returns the advancer for a frequency.
func GetDueDateAdvancer(frequency core.Frequency) (DueDateAdvancer, error) {
	adv, ok := dueDateStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFrequency, frequency)
	}
	return adv, nil
}
