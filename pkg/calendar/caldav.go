package calendar

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"golang.org/x/oauth2"
)

// CalDAVConfig describes a CalDAV server used for event markers
type CalDAVConfig struct {
	URL      string
	Username string
	Password string
	Token    string // OAuth bearer token, used instead of basic auth when set
	// TokenSource supplies refreshed bearer tokens and wins over Token
	TokenSource oauth2.TokenSource
}

// CalDAVSource reads event days from every calendar of a CalDAV account
type CalDAVSource struct {
	cfg      CalDAVConfig
	client   *caldav.Client
	location *time.Location

	mu        sync.Mutex
	calendars []string
}

// NewCalDAVSource creates a CalDAV event source
func NewCalDAVSource(ctx context.Context, cfg CalDAVConfig) (*CalDAVSource, error) {
	var httpClient webdav.HTTPClient
	switch {
	case cfg.TokenSource != nil:
		httpClient = oauth2.NewClient(ctx, cfg.TokenSource)
	case cfg.Token != "":
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	default:
		httpClient = webdav.HTTPClientWithBasicAuth(nil, cfg.Username, cfg.Password)
	}

	client, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	return &CalDAVSource{cfg: cfg, client: client, location: time.Local}, nil
}

// EventDays returns the days in [start, end) that have events on the server
func (s *CalDAVSource) EventDays(ctx context.Context, start, end time.Time) (DaySet, error) {
	paths, err := s.findCalendars(ctx)
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: start,
				End:   end,
			}},
		},
	}

	days := DaySet{}
	for _, path := range paths {
		objects, err := s.client.QueryCalendar(ctx, path, query)
		if err != nil {
			return nil, fmt.Errorf("failed to query events in %s: %w", path, err)
		}
		for _, obj := range objects {
			if obj.Data == nil {
				continue
			}
			if err := collectEventDays(days, obj.Data.Events(), start, end, s.location); err != nil {
				return nil, fmt.Errorf("invalid event in %s: %w", obj.Path, err)
			}
		}
	}
	return days, nil
}

// findCalendars discovers the account's calendars once. Servers without
// home set discovery get the configured URL queried as a single collection.
func (s *CalDAVSource) findCalendars(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calendars != nil {
		return s.calendars, nil
	}

	homeSet, err := s.client.FindCalendarHomeSet(ctx, "")
	if err == nil {
		cals, err := s.client.FindCalendars(ctx, homeSet)
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars: %w", err)
		}
		for _, cal := range cals {
			s.calendars = append(s.calendars, cal.Path)
		}
		return s.calendars, nil
	}

	u, perr := url.Parse(s.cfg.URL)
	if perr != nil {
		return nil, fmt.Errorf("failed to find calendar home: %w", err)
	}
	s.calendars = []string{u.Path}
	return s.calendars, nil
}
