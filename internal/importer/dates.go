package importer

import (
	"fmt"
	"strings"
	"time"
)

// DateOrder fixes how ambiguous numeric dates are read for a whole
// import session. It is never inferred per row, so every row of a file
// is interpreted under the same convention.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

func (o DateOrder) String() string {
	if o == MonthFirst {
		return "month_first"
	}
	return "day_first"
}

// ParseDateOrder reads a config/form value into a DateOrder.
func ParseDateOrder(raw string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day_first", "day-first", "dmy":
		return DayFirst, nil
	case "month_first", "month-first", "mdy":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("unknown date order %q", raw)
	}
}

// Date layouts split by year format for proper 2-digit year handling.
var (
	dayFirstFourDigit = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006",
	}
	dayFirstTwoDigit = []string{
		"2/1/06", "02/01/06", "2-1-06", "02-01-06",
	}
	monthFirstFourDigit = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
	}
	monthFirstTwoDigit = []string{
		"1/2/06", "01/02/06", "1-2-06", "01-02-06",
	}
	// ISO style layouts are unambiguous and accepted under either
	// convention.
	isoLayouts = []string{
		"2006-01-02", "2006/01/02",
	}
)

// DateParser parses date cells under one session-fixed convention and
// normalizes results to midnight UTC, so downstream aggregation by
// calendar day does not vary with the host time zone.
type DateParser struct {
	fourDigit []string
	twoDigit  []string
}

// NewDateParser builds a parser for the given date order.
func NewDateParser(order DateOrder) *DateParser {
	if order == MonthFirst {
		return &DateParser{
			fourDigit: append(append([]string(nil), monthFirstFourDigit...), isoLayouts...),
			twoDigit:  monthFirstTwoDigit,
		}
	}
	return &DateParser{
		fourDigit: append(append([]string(nil), dayFirstFourDigit...), isoLayouts...),
		twoDigit:  dayFirstTwoDigit,
	}
}

// Parse tries each candidate layout in order; the first success wins.
// Parsing is strict: out-of-range day or month values fail instead of
// rolling over. Two-digit years pivot at 50 (below 50 is 2000s, 50 and
// above is 1900s).
func (p *DateParser) Parse(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("unparseable date: %s", raw)
	}

	for _, layout := range p.fourDigit {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return midnightUTC(t), nil
		}
	}

	for _, layout := range p.twoDigit {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		// Go maps 2-digit years 00-68 to 2000-2068; pull years at or
		// past the pivot back into the 1900s.
		if t.Year() >= 2050 {
			t = t.AddDate(-100, 0, 0)
		}
		return midnightUTC(t), nil
	}

	return time.Time{}, fmt.Errorf("unparseable date: %s", raw)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
