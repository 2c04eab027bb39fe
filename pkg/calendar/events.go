package calendar

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

const dayKeyLayout = "2006-01-02"

// DaySet is a set of calendar days that have at least one event
type DaySet map[string]struct{}

// Add marks the day containing t
func (s DaySet) Add(t time.Time) {
	s[t.Format(dayKeyLayout)] = struct{}{}
}

// AddSpan marks every day touched by [start, end). An empty or inverted
// span marks the start day only.
func (s DaySet) AddSpan(start, end time.Time) {
	s.Add(start)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()).AddDate(0, 0, 1)
	for day.Before(end) {
		s.Add(day)
		day = day.AddDate(0, 0, 1)
	}
}

// Has reports whether the day containing t is marked
func (s DaySet) Has(t time.Time) bool {
	_, ok := s[t.Format(dayKeyLayout)]
	return ok
}

// EventSource provides the days with events in a date range
type EventSource interface {
	EventDays(ctx context.Context, start, end time.Time) (DaySet, error)
}

// MultiSource merges the days of several sources
type MultiSource []EventSource

// EventDays implements EventSource. The first failing source aborts the
// lookup.
func (m MultiSource) EventDays(ctx context.Context, start, end time.Time) (DaySet, error) {
	days := DaySet{}
	for _, src := range m {
		got, err := src.EventDays(ctx, start, end)
		if err != nil {
			return nil, err
		}
		for k := range got {
			days[k] = struct{}{}
		}
	}
	return days, nil
}

// ICSSource reads events from a local iCalendar file
type ICSSource struct {
	Path     string
	Location *time.Location
}

// NewICSSource creates an event source backed by an .ics file
func NewICSSource(path string) *ICSSource {
	return &ICSSource{Path: path, Location: time.Local}
}

// EventDays returns the days in [start, end) covered by an event in the file
func (s *ICSSource) EventDays(ctx context.Context, start, end time.Time) (DaySet, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	cal, err := ical.NewDecoder(f).Decode()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse events file: %w", err)
	}
	days := DaySet{}
	if cal == nil {
		return days, nil
	}
	return days, collectEventDays(days, cal.Events(), start, end, s.location())
}

func (s *ICSSource) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// collectEventDays marks the days in [start, end) touched by events,
// expanding recurrence rules.
func collectEventDays(days DaySet, events []ical.Event, start, end time.Time, loc *time.Location) error {
	for _, ev := range events {
		if prop := ev.Props.Get(ical.PropStatus); prop != nil && prop.Value == "CANCELLED" {
			continue
		}
		evStart, err := ev.DateTimeStart(loc)
		if err != nil {
			return fmt.Errorf("invalid event start: %w", err)
		}
		evEnd, err := ev.DateTimeEnd(loc)
		if err != nil || evEnd.IsZero() {
			evEnd = evStart
		}
		length := evEnd.Sub(evStart)

		var set *rrule.Set
		set, err = ev.RecurrenceSet(loc)
		if err != nil {
			return fmt.Errorf("invalid recurrence rule: %w", err)
		}

		occurrences := []time.Time{evStart}
		if set != nil {
			// Occurrences that begin before the range may still overlap it
			occurrences = set.Between(start.Add(-length), end, true)
		}
		for _, occ := range occurrences {
			occEnd := occ.Add(length)
			if !occ.Before(end) || occEnd.Before(start) || (length > 0 && occEnd.Equal(start)) {
				continue
			}
			clippedStart := occ
			if clippedStart.Before(start) {
				clippedStart = start
			}
			days.AddSpan(clippedStart, occEnd)
		}
	}
	return nil
}
