package domain

import "time"

// SLAWindow is the response/resolution deadline pair granted to a ticket
// at creation. Higher priorities carry shorter windows.
type SLAWindow struct {
	Response   time.Duration
	Resolution time.Duration
}

// SLATable maps priority to its deadline windows.
type SLATable map[TicketPriority]SLAWindow

// WindowFor returns the window for the given priority, falling back to the
// medium window for unknown priorities.
func (t SLATable) WindowFor(priority TicketPriority) SLAWindow {
	if w, ok := t[priority]; ok {
		return w
	}
	return t[TicketPriorityMedium]
}

// ArmSLA fixes the deadline pair on the ticket from its priority window.
func (t *Ticket) ArmSLA(table SLATable, now time.Time) {
	window := table.WindowFor(t.Priority)
	t.ResponseDue = now.Add(window.Response)
	t.ResolutionDue = now.Add(window.Resolution)
}

// IsOverdue is a pure recomputed-on-read predicate: true iff now is past
// the resolution deadline and the ticket is not settled.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return now.After(t.ResolutionDue) && !t.IsSettled()
}

// TightenResolutionDue shrinks the resolution deadline on escalation.
// Deadlines only ever tighten, never loosen, and the resolution deadline
// never drops below the response deadline.
func (t *Ticket) TightenResolutionDue(now time.Time, escalatedWindow time.Duration) {
	candidate := now.Add(escalatedWindow)
	if candidate.Before(t.ResponseDue) {
		candidate = t.ResponseDue
	}
	if candidate.Before(t.ResolutionDue) {
		t.ResolutionDue = candidate
	}
}
