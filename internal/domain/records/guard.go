package records

import "time"

// Locked reports whether a record may no longer be amended at the given
// instant. Pure function of the stored flags and the clock; the caller
// checks it before every mutation instead of relying on a background
// sweep or a stored lock state.
//
// An absent deadline with IsEditable true means no deadline applies; an
// absent deadline with IsEditable false is locked.
func Locked(rec *HealthRecord, now time.Time) bool {
	if !rec.IsEditable {
		return true
	}
	if rec.EditableUntil == nil {
		return false
	}
	return now.After(*rec.EditableUntil)
}
