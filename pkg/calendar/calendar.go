// Package calendar builds the month grid shown by the shell calendar widget.
//
// Calendar holds the displayed month and the locale and settings derived
// state. Every mutation regenerates the whole grid and hands a View to the
// registered render listeners; front ends only draw Views.
package calendar

import (
	"log/slog"
	"time"
)

// Settings is the source of the week number toggle
type Settings interface {
	WeekNumbersEnabled() bool
}

// Header is the static part of the widget: the weekday labels and whether a
// week number column is present. It changes only on settings changes.
type Header struct {
	Weekdays    []string // column order, starting at the week start
	WeekNumbers bool
}

// View is a fully rendered month
type View struct {
	Title string
	Header
	Grid Grid
}

// Options configures a Calendar
type Options struct {
	Translator Translator
	Names      Names
	Settings   Settings
	// WeekStart overrides the locale week start when it is in 0..6
	WeekStart *time.Weekday
	Now       func() time.Time
	Logger    *slog.Logger
}

// Calendar is the state behind one calendar widget. It is not safe for
// concurrent use; callers drive it from their UI loop.
type Calendar struct {
	date           time.Time
	weekStart      time.Weekday
	order          HeaderOrder
	names          Names
	settings       Settings
	useWeekNumbers bool
	events         DaySet
	now            func() time.Time
	logger         *slog.Logger

	renderListeners []func(View)
	headerListeners []func(Header)
}

// New creates a Calendar showing the current month
func New(opts Options) *Calendar {
	c := &Calendar{
		names:    opts.Names,
		settings: opts.Settings,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.names == nil {
		if n, ok := opts.Translator.(Names); ok {
			c.names = n
		} else {
			c.names = englishNames{}
		}
	}

	c.weekStart = ResolveWeekStart(opts.Translator, c.logger)
	if opts.WeekStart != nil && *opts.WeekStart >= time.Sunday && *opts.WeekStart <= time.Saturday {
		c.weekStart = *opts.WeekStart
	}
	c.order = ResolveHeaderOrder(opts.Translator, c.logger)
	if c.settings != nil {
		c.useWeekNumbers = c.settings.WeekNumbersEnabled()
	}
	c.date = c.now()
	return c
}

// OnRender registers fn to receive every regenerated View
func (c *Calendar) OnRender(fn func(View)) {
	c.renderListeners = append(c.renderListeners, fn)
}

// OnHeader registers fn to receive every rebuilt Header
func (c *Calendar) OnHeader(fn func(Header)) {
	c.headerListeners = append(c.headerListeners, fn)
}

// Date returns the reference date
func (c *Calendar) Date() time.Time {
	return c.date
}

// WeekStart returns the first day of the week
func (c *Calendar) WeekStart() time.Weekday {
	return c.weekStart
}

// WeekNumbers reports whether week numbers are shown
func (c *Calendar) WeekNumbers() bool {
	return c.useWeekNumbers
}

// SetDate shows the month containing date. Setting the same day again does
// nothing.
func (c *Calendar) SetDate(date time.Time) {
	if SameDay(date, c.date) {
		return
	}
	c.date = date
	c.update()
}

// PrevMonth moves back one calendar month
func (c *Calendar) PrevMonth() {
	c.date = AddMonths(c.date, -1)
	c.update()
}

// NextMonth moves forward one calendar month
func (c *Calendar) NextMonth() {
	c.date = AddMonths(c.date, 1)
	c.update()
}

// Today jumps back to the current date
func (c *Calendar) Today() {
	c.SetDate(c.now())
}

// SettingsChanged re-reads the week number toggle and rebuilds the header
// and grid
func (c *Calendar) SettingsChanged() {
	if c.settings != nil {
		c.useWeekNumbers = c.settings.WeekNumbersEnabled()
	}
	c.buildHeader()
	c.update()
}

// SetEventDays replaces the event markers and re-renders
func (c *Calendar) SetEventDays(days DaySet) {
	c.events = days
	c.update()
}

// Refresh emits the header and the current view, for hosts that just attached
func (c *Calendar) Refresh() {
	c.buildHeader()
	c.update()
}

// Header returns the current header
func (c *Calendar) Header() Header {
	h := Header{WeekNumbers: c.useWeekNumbers, Weekdays: make([]string, 7)}
	for i := 0; i < 7; i++ {
		h.Weekdays[i] = c.names.WeekdayAbbrev(time.Weekday((int(c.weekStart) + i) % 7))
	}
	return h
}

// View renders the current month
func (c *Calendar) View() View {
	return View{
		Title:  FormatHeader(c.date, c.order, c.names),
		Header: c.Header(),
		Grid: BuildGrid(c.date, c.now(), GridOptions{
			WeekStart:   c.weekStart,
			WeekNumbers: c.useWeekNumbers,
			Events:      c.events,
		}),
	}
}

// VisibleRange returns [start, end) of the days currently in the grid
func (c *Calendar) VisibleRange() (time.Time, time.Time) {
	g := BuildGrid(c.date, c.now(), GridOptions{WeekStart: c.weekStart})
	first := g.First()
	end := g.End()
	return time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location()),
		time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
}

func (c *Calendar) buildHeader() {
	h := c.Header()
	for _, fn := range c.headerListeners {
		fn(h)
	}
}

func (c *Calendar) update() {
	if len(c.renderListeners) == 0 {
		return
	}
	v := c.View()
	for _, fn := range c.renderListeners {
		fn(v)
	}
}
