package gtkui

import (
	"strconv"

	"github.com/djwarf/switchshell/pkg/calendar"
)

// cell is one label placed in the month grid
type cell struct {
	Text    string
	Tooltip string
	Classes []string
	Column  int
	Row     int
}

// layout places the weekday header, the optional week number column and the
// day cells of v. Row 0 is the header.
func layout(v calendar.View) []cell {
	offset := 0
	if v.WeekNumbers {
		offset = 1
	}

	cells := make([]cell, 0, len(v.Weekdays)+len(v.Grid.Days)+8)
	for i, name := range v.Weekdays {
		cells = append(cells, cell{Text: name, Classes: []string{"weekday"}, Column: i + offset})
	}

	for _, d := range v.Grid.Days {
		if d.WeekNumber != 0 {
			cells = append(cells, cell{
				Text:    strconv.Itoa(d.WeekNumber),
				Classes: []string{"weeknumber"},
				Row:     d.Row + 1,
			})
		}

		classes := []string{"day", d.Kind.String()}
		if d.HasEvents {
			classes = append(classes, "has-events")
		}
		cells = append(cells, cell{
			Text:    strconv.Itoa(d.Date.Day()),
			Tooltip: d.Date.Format("Monday 2 January 2006"),
			Classes: classes,
			Column:  d.Column + offset,
			Row:     d.Row + 1,
		})
	}
	return cells
}
