package stats

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/ticket-insights/internal/domain"
	"github.com/spec-kit/ticket-insights/internal/query"
)

// YearRollup summarizes activity for one calendar year.
type YearRollup struct {
	Year          int
	CreatedTotal  int
	CreatedOpen   int
	CreatedClosed int
	// ClosedTotal counts tickets closed in the year regardless of when
	// they were created.
	ClosedTotal int
}

// CurrentYearRollup computes the rollup for the year containing now.
func CurrentYearRollup(tickets []domain.Ticket, now time.Time) YearRollup {
	year := now.Year()

	createdThisYear := lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.CreatedDate != nil && t.CreatedDate.Year() == year
	})
	createdClosed := lo.CountBy(createdThisYear, func(t domain.Ticket) bool {
		return t.IsClosed
	})
	closedThisYear := lo.CountBy(tickets, func(t domain.Ticket) bool {
		return t.IsClosed && t.ClosedAt != nil && t.ClosedAt.Year() == year
	})

	return YearRollup{
		Year:          year,
		CreatedTotal:  len(createdThisYear),
		CreatedOpen:   len(createdThisYear) - createdClosed,
		CreatedClosed: createdClosed,
		ClosedTotal:   closedThisYear,
	}
}

// TrendPoint is one day of the opened-vs-closed series.
type TrendPoint struct {
	Date   time.Time
	Opened int
	Closed int
}

// DailyTrend counts tickets opened and closed per day over the window
// ending today. The result always has exactly days entries, zero-filled
// for days with no activity.
func DailyTrend(tickets []domain.Ticket, now time.Time, days int) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}
	end := domain.DateOf(now)
	start := end.AddDate(0, 0, -(days - 1))

	opened := make(map[time.Time]int)
	closed := make(map[time.Time]int)
	for _, t := range tickets {
		if t.CreatedDate != nil {
			opened[*t.CreatedDate]++
		}
		if t.IsClosed && t.ClosedAt != nil {
			closed[*t.ClosedAt]++
		}
	}

	points := make([]TrendPoint, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		points = append(points, TrendPoint{
			Date:   d,
			Opened: opened[d],
			Closed: closed[d],
		})
	}
	return points
}

// StatusBuckets holds the fixed named status rollups.
type StatusBuckets struct {
	OnHold            int
	InProgress        int
	PendingUserUpdate int
}

// StatusRollup counts the fixed status buckets over the given scope.
func StatusRollup(tickets []domain.Ticket) StatusBuckets {
	var b StatusBuckets
	for _, t := range tickets {
		switch {
		case domain.OnHold(t.Status):
			b.OnHold++
		case t.Status == domain.StatusInProgress:
			b.InProgress++
		case t.Status == domain.StatusPendingUserUpdate:
			b.PendingUserUpdate++
		}
	}
	return b
}

// AbandonedTicket pairs a ticket with its staleness in whole days.
type AbandonedTicket struct {
	Ticket          domain.Ticket
	DaysSinceUpdate int
}

// AbandonmentBuckets holds the nested staleness buckets. Each bucket is
// a superset of the next deeper one: a ticket untouched for 40 days
// appears in all three. Entries are ordered oldest-first.
type AbandonmentBuckets struct {
	Over7  []AbandonedTicket
	Over15 []AbandonedTicket
	Over30 []AbandonedTicket
}

// Abandonment partitions the scope's tickets into >7, >15 and >30
// days-since-update buckets. Tickets without a last-updated date are
// excluded entirely.
func Abandonment(tickets []domain.Ticket, now time.Time) AbandonmentBuckets {
	today := domain.DateOf(now)

	aged := make([]AbandonedTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.LastUpdatedDate == nil {
			continue
		}
		days := int(today.Sub(*t.LastUpdatedDate).Hours() / 24)
		aged = append(aged, AbandonedTicket{Ticket: t, DaysSinceUpdate: days})
	}
	sort.SliceStable(aged, func(i, j int) bool {
		return aged[i].DaysSinceUpdate > aged[j].DaysSinceUpdate
	})

	var b AbandonmentBuckets
	for _, a := range aged {
		if a.DaysSinceUpdate > 7 {
			b.Over7 = append(b.Over7, a)
		}
		if a.DaysSinceUpdate > 15 {
			b.Over15 = append(b.Over15, a)
		}
		if a.DaysSinceUpdate > 30 {
			b.Over30 = append(b.Over30, a)
		}
	}
	return b
}

// RollingPeriod summarizes opened/closed counts since a cutoff.
type RollingPeriod struct {
	Label  string
	Opened int
	Closed int
}

// RollingPeriods computes the last-24h, last-7d and last-30d
// opened/closed counts relative to now.
func RollingPeriods(tickets []domain.Ticket, now time.Time) []RollingPeriod {
	windows := []struct {
		label  string
		cutoff time.Time
	}{
		{"Last 24 Hours", now.Add(-24 * time.Hour)},
		{"Last 7 Days", now.AddDate(0, 0, -7)},
		{"Last 30 Days", now.AddDate(0, 0, -30)},
	}

	out := make([]RollingPeriod, 0, len(windows))
	for _, w := range windows {
		out = append(out, RollingPeriod{
			Label:  w.label,
			Opened: len(query.OpenedSince(tickets, w.cutoff)),
			Closed: len(query.ClosedSince(tickets, w.cutoff)),
		})
	}
	return out
}
