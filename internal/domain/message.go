package domain

import "time"

// Thread is a named message channel scoping visibility on a ticket.
type Thread string

const (
	ThreadAll      Thread = "all"      // reporter, analyst, authority
	ThreadRA       Thread = "ra"       // reporter <-> analyst
	ThreadAA       Thread = "aa"       // authority <-> analyst
	ThreadInternal Thread = "internal" // staff only
)

// threadAccess is the single lookup consulted for every thread
// permission decision.
var threadAccess = map[Role][]Thread{
	RoleCitizen:   {ThreadAll, ThreadRA},
	RoleAuthority: {ThreadAll, ThreadAA, ThreadInternal},
	RoleAnalyst:   {ThreadAll, ThreadRA, ThreadAA, ThreadInternal},
	RoleAdmin:     {ThreadAll, ThreadRA, ThreadAA, ThreadInternal},
}

// AllowedThreads returns the threads visible to a role.
func AllowedThreads(role Role) []Thread {
	threads := threadAccess[role]
	out := make([]Thread, len(threads))
	copy(out, threads)
	return out
}

// CanAccessThread reports whether a role may read or post to a thread.
func CanAccessThread(role Role, thread Thread) bool {
	for _, t := range threadAccess[role] {
		if t == thread {
			return true
		}
	}
	return false
}

// ValidThread reports whether the thread name is declared.
func ValidThread(thread Thread) bool {
	switch thread {
	case ThreadAll, ThreadRA, ThreadAA, ThreadInternal:
		return true
	}
	return false
}

// Message is one entry in a ticket thread. Messages are append-only and
// immutable once written.
type Message struct {
	ID         string
	TicketID   string
	Thread     Thread
	SenderID   *string // nil for system messages
	SenderRole Role
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
