package domain

// Scope names a filter mode selecting which subset of tickets a view or
// report operates over.
type Scope string

const (
	ScopeOpen            Scope = "open"
	ScopeAll             Scope = "all"
	ScopeCreatedInPeriod Scope = "createdInPeriod"
	ScopeClosedInPeriod  Scope = "closedInPeriod"
)

// ParseScope maps a selector string to a Scope. Unknown values fall
// back to ScopeAll rather than erroring.
func ParseScope(s string) Scope {
	switch Scope(s) {
	case ScopeOpen, ScopeAll, ScopeCreatedInPeriod, ScopeClosedInPeriod:
		return Scope(s)
	default:
		return ScopeAll
	}
}
