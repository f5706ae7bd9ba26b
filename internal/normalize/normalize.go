package normalize

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/ingest"
)

// Stats reports what normalization observed, for logging and counters.
type Stats struct {
	Rows int
	// DateParseFailures maps a date column name to the number of
	// non-blank values that failed to parse.
	DateParseFailures map[string]int
}

// Table derives the normalized ticket slice from a validated raw table.
// The result is treated as immutable for the lifetime of the session;
// every downstream query works on fresh filtered views of it.
func Table(raw *ingest.RawTable) ([]domain.Ticket, Stats) {
	stats := Stats{
		Rows:              len(raw.Rows),
		DateParseFailures: make(map[string]int),
	}

	tickets := make([]domain.Ticket, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		t := domain.Ticket{
			RequestID:   strings.TrimSpace(raw.Value(row, "Request ID")),
			Subject:     strings.TrimSpace(raw.Value(row, "Subject")),
			StatusRaw:   strings.TrimSpace(raw.Value(row, "Status.Name")),
			Category:    strings.TrimSpace(raw.Value(row, "Category.Name")),
			Group:       categorical(raw.Value(row, "Group.Name")),
			SubCategory: categorical(raw.Value(row, "Sub Category.Name")),
			IPCFeature:  categorical(raw.Value(row, "IPC Feature List")),
			Technician:  categorical(raw.Value(row, "Technician.Name")),
			Requester:   categorical(raw.Value(row, "Requester.Name")),
			DevOpsRef:   categorical(raw.Value(row, "DevOpsRef")),
			Priority:    categorical(raw.Value(row, "Priority.Name")),
		}
		t.Status = strings.ToLower(t.StatusRaw)

		t.CreatedDate = parseTracked(raw.Value(row, "Created Date"), "Created Date", &stats)
		t.CompletedDate = parseTracked(raw.Value(row, "Completed Time"), "Completed Time", &stats)
		t.LastUpdatedDate = parseTracked(raw.Value(row, "Last Updated Time"), "Last Updated Time", &stats)

		t.IsClosed = domain.Closed(t.Status)
		if t.IsClosed {
			if t.CompletedDate != nil {
				t.ClosedAt = t.CompletedDate
			} else {
				t.ClosedAt = t.LastUpdatedDate
			}
		}

		tickets = append(tickets, t)
	}
	return tickets, stats
}

// categorical trims a value and substitutes the Unassigned sentinel for
// blank or literal "nan" cells, so grouping treats every row uniformly.
func categorical(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "nan" {
		return domain.Unassigned
	}
	return s
}

func parseTracked(raw, column string, stats *Stats) *time.Time {
	d := ParseDate(raw)
	if d == nil {
		// Blank and "nan" cells are absent values, not parse failures.
		if s := strings.TrimSpace(raw); s != "" && s != "nan" {
			stats.DateParseFailures[column]++
		}
	}
	return d
}
