package domain

import "time"

// Participant is an additional user granted visibility on a ticket beyond
// the primary reporter/analyst/authority trio. Removal is a soft delete;
// inactive rows are retained for audit.
type Participant struct {
	ID         string
	TicketID   string
	UserID     string
	Role       Role
	CanMessage bool
	Notes      string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Roster is the canonical set of user ids attached to a ticket. It is the
// single source of truth for every dedup decision.
type Roster map[string]struct{}

// Contains reports roster membership.
func (r Roster) Contains(userID string) bool {
	_, ok := r[userID]
	return ok
}

// BuildRoster merges the primary participants and active additional
// participants of a ticket into one canonical set.
func BuildRoster(ticket *Ticket, additional []Participant) Roster {
	roster := Roster{ticket.ReporterID: {}}
	if ticket.AssignedAnalystID != nil {
		roster[*ticket.AssignedAnalystID] = struct{}{}
	}
	if ticket.AuthorityID != nil {
		roster[*ticket.AuthorityID] = struct{}{}
	}
	for _, p := range additional {
		if p.IsActive {
			roster[p.UserID] = struct{}{}
		}
	}
	return roster
}
