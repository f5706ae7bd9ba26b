package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/query"
	"github.com/spec-kit/ticket-insights/internal/stats"
)

// Summary renders the canonical ticket report for a comparison date
// pair. Output is deterministic for a fixed (tickets, dateA, dateB,
// now) input.
type Summary struct {
	Tickets []domain.Ticket
	DateA   time.Time
	DateB   time.Time
	Now     time.Time
}

// sectionMetrics is one row of the period metrics table.
type sectionMetrics struct {
	Label   string
	Created int
	OnHold  int
	// PendingAction is the in-progress status count; "Pending Action"
	// is its report-facing column name.
	PendingAction     int
	PendingUserUpdate int
	Closed            int
}

type summaryData struct {
	GeneratedAt string

	TotalTickets int
	TotalOpen    int
	TotalClosed  int

	Year stats.YearRollup

	DateALabel             string
	DateBLabel             string
	OpenedOnA, ClosedOnA   int
	OpenedOnB, ClosedOnB   int

	Rolling []stats.RollingPeriod

	Sections []sectionMetrics

	AbandonedOver7  int
	AbandonedOver15 int
	AbandonedOver30 int
}

func (s Summary) build() summaryData {
	open := query.Open(s.Tickets)

	data := summaryData{
		GeneratedAt:  s.Now.Format("02/01/2006 at 03:04 PM"),
		TotalTickets: len(s.Tickets),
		TotalOpen:    len(open),
		TotalClosed:  len(s.Tickets) - len(open),
		Year:         stats.CurrentYearRollup(s.Tickets, s.Now),
		DateALabel:   s.DateA.Format("02/01/2006"),
		DateBLabel:   s.DateB.Format("02/01/2006"),
		OpenedOnA:    len(query.OpenedOn(s.Tickets, s.DateA)),
		ClosedOnA:    len(query.ClosedOn(s.Tickets, s.DateA)),
		OpenedOnB:    len(query.OpenedOn(s.Tickets, s.DateB)),
		ClosedOnB:    len(query.ClosedOn(s.Tickets, s.DateB)),
		Rolling:      stats.RollingPeriods(s.Tickets, s.Now),
	}

	today := domain.DateOf(s.Now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	data.Sections = []sectionMetrics{
		s.sectionFrom("All Tickets", s.Tickets, len(s.Tickets)-len(open)),
		s.periodSection(
			fmt.Sprintf("Created in Period (%s - %s)", data.DateALabel, data.DateBLabel),
			s.DateA, s.DateB,
		),
		s.periodSection("Created in Current Month", monthStart, today),
	}

	ab := stats.Abandonment(open, s.Now)
	data.AbandonedOver7 = len(ab.Over7)
	data.AbandonedOver15 = len(ab.Over15)
	data.AbandonedOver30 = len(ab.Over30)

	return data
}

// periodSection computes a period row. The closed count comes from the
// period's closed-date window, not from filtering the created-in-period
// set on IsClosed; the two disagree whenever tickets close outside the
// period they were created in.
func (s Summary) periodSection(label string, start, end time.Time) sectionMetrics {
	created := query.InPeriod(s.Tickets, start, end, domain.ScopeCreatedInPeriod)
	closed := len(query.InPeriod(s.Tickets, start, end, domain.ScopeClosedInPeriod))
	return s.sectionFrom(label, created, closed)
}

func (s Summary) sectionFrom(label string, scope []domain.Ticket, closed int) sectionMetrics {
	buckets := stats.StatusRollup(scope)
	return sectionMetrics{
		Label:             label,
		Created:           len(scope),
		OnHold:            buckets.OnHold,
		PendingAction:     buckets.InProgress,
		PendingUserUpdate: buckets.PendingUserUpdate,
		Closed:            closed,
	}
}

// RenderText produces the plain-text report.
func (s Summary) RenderText() string {
	data := s.build()

	var b strings.Builder
	b.WriteString("TICKET SYSTEM SUMMARY\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", data.GeneratedAt)

	b.WriteString("OVERVIEW\n")
	fmt.Fprintf(&b, "- Total Tickets: %d\n", data.TotalTickets)
	fmt.Fprintf(&b, "- Total Open Tickets: %d\n", data.TotalOpen)
	fmt.Fprintf(&b, "- Total Closed Tickets: %d\n\n", data.TotalClosed)

	fmt.Fprintf(&b, "CURRENT YEAR (%d)\n", data.Year.Year)
	fmt.Fprintf(&b, "- Created: %d (open %d, closed %d)\n", data.Year.CreatedTotal, data.Year.CreatedOpen, data.Year.CreatedClosed)
	fmt.Fprintf(&b, "- Closed in %d: %d\n\n", data.Year.Year, data.Year.ClosedTotal)

	b.WriteString("DATE COMPARISON\n")
	fmt.Fprintf(&b, "Date A (%s):\n", data.DateALabel)
	fmt.Fprintf(&b, "- Tickets Opened: %d\n", data.OpenedOnA)
	fmt.Fprintf(&b, "- Tickets Closed/Resolved: %d\n", data.ClosedOnA)
	fmt.Fprintf(&b, "Date B (%s):\n", data.DateBLabel)
	fmt.Fprintf(&b, "- Tickets Opened: %d\n", data.OpenedOnB)
	fmt.Fprintf(&b, "- Tickets Closed/Resolved: %d\n\n", data.ClosedOnB)

	b.WriteString("ROLLING PERIODS\n")
	for _, p := range data.Rolling {
		fmt.Fprintf(&b, "%s:\n", p.Label)
		fmt.Fprintf(&b, "- Tickets Opened: %d\n", p.Opened)
		fmt.Fprintf(&b, "- Tickets Closed/Resolved: %d\n", p.Closed)
	}
	b.WriteString("\n")

	b.WriteString("PERIOD METRICS\n")
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Scope", "Created", "On Hold", "Pending Action", "Pending User Update", "Closed"})
	table.SetBorders(tablewriter.Border{Left: true, Top: true, Right: true, Bottom: true})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	for _, sec := range data.Sections {
		table.Append([]string{
			sec.Label,
			fmt.Sprintf("%d", sec.Created),
			fmt.Sprintf("%d", sec.OnHold),
			fmt.Sprintf("%d", sec.PendingAction),
			fmt.Sprintf("%d", sec.PendingUserUpdate),
			fmt.Sprintf("%d", sec.Closed),
		})
	}
	table.Render()
	b.WriteString("\n")

	b.WriteString("ABANDONED OPEN TICKETS\n")
	fmt.Fprintf(&b, "- Not updated >7 days: %d\n", data.AbandonedOver7)
	fmt.Fprintf(&b, "- Not updated >15 days: %d\n", data.AbandonedOver15)
	fmt.Fprintf(&b, "- Not updated >30 days: %d\n", data.AbandonedOver30)

	return b.String()
}

// ArtifactName returns the timestamped file name for a downloadable
// summary artifact.
func ArtifactName(now time.Time, ext string) string {
	return fmt.Sprintf("ticket_summary_%s.%s", now.Format("20060102_150405"), ext)
}
