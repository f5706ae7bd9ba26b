package normalize

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-insights/internal/domain"
)

// Candidate layouts tried in order. Month-first layouts come first so
// an ambiguous value like 05/03/2024 resolves as May 3; day-first
// layouts only catch values that are impossible month-first, such as
// 25/03/2024.
var monthFirstLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"2 Jan 2006",
}

var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"02-01-2006",
}

// ParseDate parses a raw date/time string permissively and keeps only
// the calendar date. Blank or unparseable values return nil; parsing
// never errors.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" || s == "nan" {
		return nil
	}
	for _, layout := range monthFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := domain.DateOf(t)
			return &d
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := domain.DateOf(t)
			return &d
		}
	}
	return nil
}
