package core

// Outcome is the result of one reconciliation cycle.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Result describes one completed reconciliation cycle. It is derived
// each run and carried to both the log and the notification.
type Result struct {
	Outcome Outcome
	Domain  string
	IP      string // resolved public IP; empty when resolution failed
	OldIP   string // previous record value; set when Outcome is OutcomeUpdated
	Err     error  // cause; set when Outcome is OutcomeFailed
}
