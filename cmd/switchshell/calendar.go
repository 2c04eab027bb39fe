package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/internal/config"
	"github.com/djwarf/switchshell/pkg/calendar"
	"github.com/djwarf/switchshell/pkg/ui/gtkui"
	"github.com/djwarf/switchshell/pkg/ui/term"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Open the calendar window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCalendarWindow()
	},
}

var calWeekNumbers bool

var calCmd = &cobra.Command{
	Use:   "cal",
	Short: "Show the calendar in the terminal",
	Long: `Show the month calendar in the terminal.

Keys: ←/h previous month, →/l next month, t today, w week numbers, q quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		showWeeks := cfg.ShowWeekNumbers
		if cmd.Flags().Changed("week-numbers") {
			showWeeks = calWeekNumbers
		}

		model := term.New(term.Options{
			Calendar:        calendarOptions(nil),
			ShowWeekNumbers: showWeeks,
			Events:          eventSource(context.Background()),
		})
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err := p.Run()
		return err
	},
}

func init() {
	calCmd.Flags().BoolVarP(&calWeekNumbers, "week-numbers", "w", false, "show ISO week numbers")
}

func runCalendarWindow() error {
	watcher, err := config.NewWatcher(configPath, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	app := gtk.NewApplication(appID, 0)
	app.ConnectActivate(func() { activateCalendar(app, watcher) })

	if code := app.Run([]string{os.Args[0]}); code > 0 {
		return fmt.Errorf("gtk application exited with status %d", code)
	}
	return nil
}

func activateCalendar(app *gtk.Application, watcher *config.Watcher) {
	gtkui.LoadCSS()

	current := watcher.Config()
	settings := gtkui.NewGSettings(watcher)
	if !settings.Available() {
		logger.Debug("desktop calendar settings not installed, using config file")
	}

	cal := calendar.New(calendarOptions(settings))
	widget := gtkui.NewCalendarWidget(cal, eventSource(context.Background()), logger)

	settings.OnChanged(cal.SettingsChanged)
	watcher.OnChange(func(old, cur *config.Config) {
		glib.IdleAdd(func() {
			cfg = cur
			cal.SettingsChanged()
			if old.EventsFile != cur.EventsFile || old.CalDAVURL != cur.CalDAVURL || old.CalDAVToken != cur.CalDAVToken ||
				old.GOAAccount != cur.GOAAccount {
				widget.SetSource(eventSource(context.Background()))
				return
			}
			widget.Reload()
		})
	})

	window := gtk.NewApplicationWindow(app)
	window.SetTitle("Calendar")
	window.SetDefaultSize(current.WindowWidth, current.WindowHeight)
	window.SetChild(widget.Box)
	window.Show()
}
