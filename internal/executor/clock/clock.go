// Package clock answers tell_time and tell_date in the configured timezone.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/nadzzz/vaani/internal/executor"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
)

// DefaultTimezone is India Standard Time.
const DefaultTimezone = "Asia/Kolkata"

// Clock serves one of tell_time or tell_date.
type Clock struct {
	tool string
	loc  *time.Location
	now  func() time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// LoadLocation resolves a timezone name, using DefaultTimezone when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// NewTime creates the tell_time executor.
func NewTime(loc *time.Location, opts ...Option) *Clock {
	return newClock(message.ToolTellTime, loc, opts)
}

// NewDate creates the tell_date executor.
func NewDate(loc *time.Location, opts ...Option) *Clock {
	return newClock(message.ToolTellDate, loc, opts)
}

func newClock(tool string, loc *time.Location, opts []Option) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	c := &Clock{tool: tool, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tool implements executor.Executor.
func (c *Clock) Tool() string { return c.tool }

// Execute implements executor.Executor.
func (c *Clock) Execute(_ context.Context, action message.Action) (*executor.Result, error) {
	now := c.now().In(c.loc)
	lang := multilang.ParseLanguage(action.Language)

	if c.tool == message.ToolTellDate {
		date := now.Format("Monday, 2 January 2006")
		return &executor.Result{
			Message: dateIs.Format(lang, map[string]string{"date": date}),
			Data:    map[string]string{"date": now.Format("2006-01-02")},
		}, nil
	}

	clock := now.Format("3:04 PM")
	return &executor.Result{
		Message: timeIs.Format(lang, map[string]string{"time": clock}),
		Data:    map[string]string{"time": now.Format(time.RFC3339)},
	}, nil
}

var (
	timeIs = multilang.Phrases{
		multilang.English:  "It's {time}",
		multilang.Hindi:    "Abhi {time} baje hain",
		multilang.Gujarati: "Atyare {time} vagya che",
	}
	dateIs = multilang.Phrases{
		multilang.English:  "Today is {date}",
		multilang.Hindi:    "Aaj {date} hai",
		multilang.Gujarati: "Aaje {date} che",
	}
)
