package query

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/ticket-insights/internal/domain"
)

// Open returns tickets whose status is not in the closed set.
func Open(tickets []domain.Ticket) []domain.Ticket {
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return !t.IsClosed
	})
}

// OpenedOn returns tickets created on the given calendar date.
func OpenedOn(tickets []domain.Ticket, date time.Time) []domain.Ticket {
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return domain.SameDay(t.CreatedDate, date)
	})
}

// ClosedOn returns closed tickets whose effective closed date equals
// the given calendar date.
func ClosedOn(tickets []domain.Ticket, date time.Time) []domain.Ticket {
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.IsClosed && domain.SameDay(t.ClosedAt, date)
	})
}

// OpenedSince returns tickets created on or after the instant's
// calendar date. The time-of-day of the cutoff is ignored.
func OpenedSince(tickets []domain.Ticket, instant time.Time) []domain.Ticket {
	cutoff := domain.DateOf(instant)
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.CreatedDate != nil && !t.CreatedDate.Before(cutoff)
	})
}

// ClosedSince returns closed tickets whose effective closed date is on
// or after the instant's calendar date.
func ClosedSince(tickets []domain.Ticket, instant time.Time) []domain.Ticket {
	cutoff := domain.DateOf(instant)
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.IsClosed && t.ClosedAt != nil && !t.ClosedAt.Before(cutoff)
	})
}

// InPeriod selects tickets for a scope over the inclusive [start, end]
// date window. Unknown scopes fall back to ScopeAll.
func InPeriod(tickets []domain.Ticket, start, end time.Time, scope domain.Scope) []domain.Ticket {
	a := domain.DateOf(start)
	b := domain.DateOf(end)
	switch scope {
	case domain.ScopeOpen:
		return Open(tickets)
	case domain.ScopeCreatedInPeriod:
		return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
			return inWindow(t.CreatedDate, a, b)
		})
	case domain.ScopeClosedInPeriod:
		return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
			return t.IsClosed && inWindow(t.ClosedAt, a, b)
		})
	default:
		out := make([]domain.Ticket, len(tickets))
		copy(out, tickets)
		return out
	}
}

// WithDevOpsRef returns tickets carrying a real DevOps reference,
// excluding the Unassigned sentinel.
func WithDevOpsRef(tickets []domain.Ticket) []domain.Ticket {
	return lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
		return t.DevOpsRef != domain.Unassigned
	})
}

func inWindow(d *time.Time, a, b time.Time) bool {
	if d == nil {
		return false
	}
	return !d.Before(a) && !d.After(b)
}

// GroupCount is one (value, count) pair of a breakdown.
type GroupCount struct {
	Value string
	Count int
}

// CountByColumn groups tickets by a breakdown column's value and counts
// each group. Results are sorted by count descending with ties broken
// by first-encountered order; the Unassigned sentinel is an ordinary
// group. Empty input yields an empty result.
func CountByColumn(tickets []domain.Ticket, column domain.Column) []GroupCount {
	counts := make(map[string]int, len(tickets))
	order := make([]string, 0, len(tickets))
	for _, t := range tickets {
		value := t.Field(column)
		if _, seen := counts[value]; !seen {
			order = append(order, value)
		}
		counts[value]++
	}

	out := make([]GroupCount, 0, len(order))
	for _, value := range order {
		out = append(out, GroupCount{Value: value, Count: counts[value]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
