package gtkui

import (
	"context"
	"log/slog"
	"time"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/djwarf/switchshell/pkg/calendar"
)

const calendarCSS = `
.switchshell-calendar .weekday { font-weight: bold; opacity: 0.7; }
.switchshell-calendar .day { padding: 4px; min-width: 28px; }
.switchshell-calendar .other-month { opacity: 0.45; }
.switchshell-calendar .today { font-weight: bold; color: @accent_color; }
.switchshell-calendar .has-events { text-decoration: underline; }
.switchshell-calendar .weeknumber { opacity: 0.5; font-size: smaller; }
`

// LoadCSS installs the calendar style classes for the default display
func LoadCSS() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	provider := gtk.NewCSSProvider()
	provider.LoadFromData(calendarCSS)
	gtk.StyleContextAddProviderForDisplay(display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// CalendarWidget draws a calendar.Calendar. All methods run on the GTK main
// thread.
type CalendarWidget struct {
	*gtk.Box

	cal    *calendar.Calendar
	title  *gtk.Label
	grid   *gtk.Grid
	cells  []*gtk.Label
	source calendar.EventSource
	logger *slog.Logger

	loadedFrom time.Time
}

// NewCalendarWidget builds the widget and renders the current month. When
// source is set, event markers are loaded for every displayed grid.
func NewCalendarWidget(cal *calendar.Calendar, source calendar.EventSource, logger *slog.Logger) *CalendarWidget {
	if logger == nil {
		logger = slog.Default()
	}
	w := &CalendarWidget{
		Box:    gtk.NewBox(gtk.OrientationVertical, 6),
		cal:    cal,
		source: source,
		logger: logger,
	}
	w.AddCSSClass("switchshell-calendar")
	w.SetMarginTop(8)
	w.SetMarginBottom(8)
	w.SetMarginStart(8)
	w.SetMarginEnd(8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	prevBtn := gtk.NewButtonFromIconName("go-previous-symbolic")
	prevBtn.SetTooltipText("Previous month")
	prevBtn.AddCSSClass("flat")
	prevBtn.ConnectClicked(cal.PrevMonth)

	nextBtn := gtk.NewButtonFromIconName("go-next-symbolic")
	nextBtn.SetTooltipText("Next month")
	nextBtn.AddCSSClass("flat")
	nextBtn.ConnectClicked(cal.NextMonth)

	w.title = gtk.NewLabel("")
	w.title.AddCSSClass("heading")
	w.title.SetHExpand(true)
	w.title.SetXAlign(0.5)

	todayBtn := gtk.NewButtonWithLabel("Today")
	todayBtn.AddCSSClass("flat")
	todayBtn.ConnectClicked(cal.Today)

	headerBox.Append(prevBtn)
	headerBox.Append(w.title)
	headerBox.Append(todayBtn)
	headerBox.Append(nextBtn)
	w.Append(headerBox)

	w.grid = gtk.NewGrid()
	w.grid.SetRowHomogeneous(true)
	w.grid.SetColumnHomogeneous(true)
	w.grid.SetRowSpacing(2)
	w.grid.SetColumnSpacing(2)
	w.grid.SetVExpand(true)
	w.grid.SetHExpand(true)
	w.Append(w.grid)

	// Wheel up shows the previous month, wheel down the next
	scroll := gtk.NewEventControllerScroll(gtk.EventControllerScrollVertical | gtk.EventControllerScrollDiscrete)
	scroll.ConnectScroll(func(dx, dy float64) bool {
		switch {
		case dy < 0:
			cal.PrevMonth()
		case dy > 0:
			cal.NextMonth()
		default:
			return false
		}
		return true
	})
	w.AddController(scroll)

	cal.OnHeader(func(h calendar.Header) {
		if h.WeekNumbers {
			w.AddCSSClass("with-week-numbers")
		} else {
			w.RemoveCSSClass("with-week-numbers")
		}
	})
	cal.OnRender(w.render)
	cal.Refresh()

	return w
}

// Calendar returns the state drawn by the widget
func (w *CalendarWidget) Calendar() *calendar.Calendar {
	return w.cal
}

// render must run on main thread
func (w *CalendarWidget) render(v calendar.View) {
	w.title.SetText(v.Title)

	for _, l := range w.cells {
		w.grid.Remove(l)
	}
	w.cells = w.cells[:0]

	for _, c := range layout(v) {
		label := gtk.NewLabel(c.Text)
		for _, class := range c.Classes {
			label.AddCSSClass(class)
		}
		if c.Tooltip != "" {
			label.SetTooltipText(c.Tooltip)
		}
		w.grid.Attach(label, c.Column, c.Row, 1, 1)
		w.cells = append(w.cells, label)
	}

	w.loadEvents()
}

// loadEvents fetches markers for the visible range once per range
func (w *CalendarWidget) loadEvents() {
	if w.source == nil {
		return
	}
	start, end := w.cal.VisibleRange()
	if start.Equal(w.loadedFrom) {
		return
	}
	w.loadedFrom = start

	source := w.source
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		days, err := source.EventDays(ctx, start, end)
		glib.IdleAdd(func() {
			if err != nil {
				w.logger.Warn("failed to load events", "start", start, "error", err)
				return
			}
			if current, _ := w.cal.VisibleRange(); !current.Equal(start) {
				return
			}
			w.cal.SetEventDays(days)
		})
	}()
}

// SetSource replaces the event marker source and reloads
func (w *CalendarWidget) SetSource(source calendar.EventSource) {
	w.source = source
	if source == nil {
		w.cal.SetEventDays(nil)
	}
	w.Reload()
}

// Reload drops cached markers and fetches them again
func (w *CalendarWidget) Reload() {
	w.loadedFrom = time.Time{}
	w.loadEvents()
}
