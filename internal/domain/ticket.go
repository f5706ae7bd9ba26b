package domain

import "time"

// Unassigned is the sentinel substituted for blank or missing
// categorical values during normalization.
const Unassigned = "Unassigned"

// ClosedStatuses is the set of normalized status values considered
// terminal. Membership decides IsClosed.
var ClosedStatuses = map[string]struct{}{
	"closed":   {},
	"resolved": {},
}

// OnHoldStatuses is the set of normalized status values counted in the
// on-hold bucket.
var OnHoldStatuses = map[string]struct{}{
	"on hold": {},
	"onhold":  {},
}

// Normalized status values matched exactly by the fixed rollup buckets.
const (
	StatusInProgress        = "in progress"
	StatusPendingUserUpdate = "pending user update"
)

// Ticket is one row of the normalized table. Date fields are calendar
// dates (UTC midnight); nil means the source value was blank or
// unparseable.
type Ticket struct {
	RequestID   string
	Subject     string
	StatusRaw   string
	Status      string
	Category    string
	Group       string
	SubCategory string
	IPCFeature  string
	Technician  string
	Requester   string
	DevOpsRef   string
	Priority    string

	CreatedDate     *time.Time
	CompletedDate   *time.Time
	LastUpdatedDate *time.Time

	IsClosed bool
	// ClosedAt is the effective closed date: CompletedDate when present,
	// else LastUpdatedDate. Never set when IsClosed is false.
	ClosedAt *time.Time
}

// Closed reports membership of a normalized status in ClosedStatuses.
func Closed(status string) bool {
	_, ok := ClosedStatuses[status]
	return ok
}

// OnHold reports membership of a normalized status in OnHoldStatuses.
func OnHold(status string) bool {
	_, ok := OnHoldStatuses[status]
	return ok
}
