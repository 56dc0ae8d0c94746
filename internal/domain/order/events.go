package order

import "time"

// StatusChangedEvent records a successful status transition. Mutators
// return emitted events to the caller instead of buffering them on the
// aggregate; the caller forwards them once the change is durably
// committed.
type StatusChangedEvent struct {
	OrderID    string
	OldStatus  Status
	NewStatus  Status
	OccurredAt time.Time
}
