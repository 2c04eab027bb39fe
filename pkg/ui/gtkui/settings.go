package gtkui

import (
	"github.com/diamondburned/gotk4/pkg/gio/v2"

	"github.com/djwarf/switchshell/pkg/calendar"
)

const (
	calendarSchema = "org.gnome.desktop.calendar"
	weekdateKey    = "show-weekdate"
)

// GSettings reads the week number toggle from the desktop settings. When the
// schema is not installed it falls back to another source.
type GSettings struct {
	settings *gio.Settings
	fallback calendar.Settings
}

// NewGSettings opens the desktop calendar settings
func NewGSettings(fallback calendar.Settings) *GSettings {
	s := &GSettings{fallback: fallback}
	if src := gio.SettingsSchemaSourceGetDefault(); src != nil && src.Lookup(calendarSchema, true) != nil {
		s.settings = gio.NewSettings(calendarSchema)
	}
	return s
}

// Available reports whether the desktop schema was found
func (s *GSettings) Available() bool {
	return s.settings != nil
}

// WeekNumbersEnabled implements calendar.Settings
func (s *GSettings) WeekNumbersEnabled() bool {
	if s.settings != nil {
		return s.settings.Boolean(weekdateKey)
	}
	if s.fallback != nil {
		return s.fallback.WeekNumbersEnabled()
	}
	return false
}

// OnChanged runs fn on the main thread whenever the toggle changes
func (s *GSettings) OnChanged(fn func()) {
	if s.settings == nil {
		return
	}
	s.settings.ConnectChanged(func(key string) {
		if key == weekdateKey {
			fn()
		}
	})
}
