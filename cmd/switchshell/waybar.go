package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/pkg/calendar"
)

// WaybarOutput is the JSON structure for waybar custom modules
type WaybarOutput struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

var waybarCmd = &cobra.Command{
	Use:   "waybar",
	Short: "Print today's date and the month grid as waybar JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return json.NewEncoder(os.Stdout).Encode(waybarOutput(time.Now()))
	},
}

func waybarOutput(now time.Time) WaybarOutput {
	cal := calendar.New(calendarOptions(cfg))

	class := "no-events"
	if source := eventSource(context.Background()); source != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		start, end := cal.VisibleRange()
		days, err := source.EventDays(ctx, start, end)
		if err != nil {
			logger.Warn("failed to load events", "error", err)
			class = "error"
		} else {
			cal.SetEventDays(days)
			if days.Has(now) {
				class = "has-events"
			}
		}
	}

	return WaybarOutput{
		Text:    now.Format("02/01"),
		Tooltip: waybarTooltip(cal.View()),
		Class:   class,
	}
}

// waybarTooltip renders the month as Pango markup in a monospace block
func waybarTooltip(v calendar.View) string {
	var b strings.Builder
	b.WriteString("<tt>")
	b.WriteString("<b>" + html.EscapeString(v.Title) + "</b>\n")

	if v.WeekNumbers {
		b.WriteString("   ")
	}
	for _, wd := range v.Weekdays {
		b.WriteString(fmt.Sprintf("%3s", html.EscapeString(truncate(wd, 2))))
	}

	for _, row := range v.Grid.Rows() {
		b.WriteString("\n")
		if v.WeekNumbers {
			week := ""
			for _, d := range row {
				if d.WeekNumber != 0 {
					week = strconv.Itoa(d.WeekNumber)
				}
			}
			b.WriteString(fmt.Sprintf("<i>%2s</i> ", week))
		}
		for _, d := range row {
			num := fmt.Sprintf("%2d", d.Date.Day())
			switch {
			case d.Kind == calendar.Today:
				num = "<b><u>" + num + "</u></b>"
			case d.Kind == calendar.OtherMonth:
				num = "<span alpha='50%'>" + num + "</span>"
			case d.HasEvents:
				num = "<b>" + num + "</b>"
			}
			b.WriteString(" " + num)
		}
	}
	b.WriteString("</tt>")
	return b.String()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
