package calendar

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Message ids used to look up locale conventions. A translator answers with
// the id itself when it has no translation.
const (
	WeekStartMsgID   = "calendar:week_start:0"
	HeaderOrderMsgID = "calendar:MY"

	weekStartPrefix = "calendar:week_start:"
)

// Translator looks up a translated string, returning msgID when there is none
type Translator interface {
	Translate(msgID string) string
}

// HeaderOrder is the ordering of month and year in the calendar title
type HeaderOrder int

const (
	MonthYear HeaderOrder = iota
	YearMonth
)

// ResolveWeekStart reads the first day of the week from tr. Anything other
// than "calendar:week_start:N" with N in 0..6 falls back to Sunday.
func ResolveWeekStart(tr Translator, logger *slog.Logger) time.Weekday {
	if logger == nil {
		logger = slog.Default()
	}
	value := WeekStartMsgID
	if tr != nil {
		value = tr.Translate(WeekStartMsgID)
	}

	if strings.HasPrefix(value, weekStartPrefix) {
		n, err := strconv.Atoi(value[len(weekStartPrefix):])
		if err == nil && n >= 0 && n <= 6 {
			return time.Weekday(n)
		}
	}
	logger.Warn("translation of week start is not correct, using Sunday",
		"msgid", WeekStartMsgID, "value", value)
	return time.Sunday
}

// ResolveHeaderOrder reads the month/year ordering from tr, falling back to
// month before year.
func ResolveHeaderOrder(tr Translator, logger *slog.Logger) HeaderOrder {
	if logger == nil {
		logger = slog.Default()
	}
	value := HeaderOrderMsgID
	if tr != nil {
		value = tr.Translate(HeaderOrderMsgID)
	}

	switch value {
	case "calendar:MY":
		return MonthYear
	case "calendar:YM":
		return YearMonth
	default:
		logger.Warn("translation of month/year order is not correct, using month first",
			"msgid", HeaderOrderMsgID, "value", value)
		return MonthYear
	}
}

// Names supplies localized month and weekday names
type Names interface {
	MonthName(m time.Month) string
	WeekdayAbbrev(d time.Weekday) string
}

// englishNames uses the names built into package time
type englishNames struct{}

func (englishNames) MonthName(m time.Month) string { return m.String() }

func (englishNames) WeekdayAbbrev(d time.Weekday) string { return d.String()[:3] }

// FormatHeader renders the title for the month containing t
func FormatHeader(t time.Time, order HeaderOrder, names Names) string {
	if names == nil {
		names = englishNames{}
	}
	month := names.MonthName(t.Month())
	year := strconv.Itoa(t.Year())
	if order == YearMonth {
		return year + " " + month
	}
	return month + " " + year
}
