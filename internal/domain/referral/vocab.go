package referral

import (
	"fmt"
	"math/rand"
)

// The status and sub-status vocabularies are closed: clients select from
// these exact strings and nothing else round-trips.
var subStatuses = map[string][]string{
	"new":                   {"Unassigned", "Pending Triage", "Awaiting Information"},
	"in_progress":           {"Assigned", "Reviewing Documents", "Verification Needed", "Awaiting Scheduling", "Consult Scheduled"},
	"pending_authorization": {"Authorization Required", "Authorization Submitted", "Authorization Denied", "Authorization Approved"},
	"scheduled":             {"Appointment Confirmed", "Appointment Rescheduled", "Awaiting Pre-Appointment Requirements"},
	"completed":             {"Consult Completed", "Follow-up Scheduled", "Report Submitted"},
	"on_hold":               {"Patient Unreachable", "Insurance Issue", "Patient Request", "Clinical Hold"},
	"cancelled":             {"Patient Declined", "Referral Withdrawn", "Insurance Denied", "Duplicate Referral"},
	"closed":                {"Referral Completed", "Outcome Reported", "Referral Archived"},
}

var priorities = map[string]bool{
	"urgent": true, "high": true, "medium": true, "low": true,
}

// ValidStatus reports membership in the status vocabulary.
func ValidStatus(status string) bool {
	_, ok := subStatuses[status]
	return ok
}

// ValidSubStatus reports whether sub belongs to the given status's set.
func ValidSubStatus(status, sub string) bool {
	for _, s := range subStatuses[status] {
		if s == sub {
			return true
		}
	}
	return false
}

// DefaultSubStatus returns the first sub-status for a status, the value a
// status transition lands on when the caller names no sub-status.
func DefaultSubStatus(status string) string {
	set := subStatuses[status]
	if len(set) == 0 {
		return ""
	}
	return set[0]
}

// ValidPriority reports membership in the priority vocabulary.
func ValidPriority(priority string) bool {
	return priorities[priority]
}

// NewCaseID generates a human-facing case identifier: "REF" plus six random
// digits. Uniqueness is not enforced; the id is a display handle, not a key.
func NewCaseID() string {
	return fmt.Sprintf("REF%06d", 100000+rand.Intn(900000))
}
