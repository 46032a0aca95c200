package domain

import "testing"

func TestIsValidTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusAssigned, true},
		{TicketStatusOpen, TicketStatusInProgress, false},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusAssigned, TicketStatusInProgress, true},
		{TicketStatusAssigned, TicketStatusEscalated, true},
		{TicketStatusAssigned, TicketStatusResolved, false},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusEscalated, true},
		{TicketStatusInProgress, TicketStatusClosed, false},
		{TicketStatusEscalated, TicketStatusAssigned, true},
		{TicketStatusEscalated, TicketStatusInProgress, true},
		{TicketStatusEscalated, TicketStatusResolved, false},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusOpen, false},
		{TicketStatusClosed, TicketStatusOpen, false},
		{TicketStatusClosed, TicketStatusAssigned, false},
	}
	for _, tc := range cases {
		if got := IsValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, to := range []TicketStatus{TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved, TicketStatusClosed} {
		if IsValidTransition(TicketStatusClosed, to) {
			t.Errorf("closed must not transition to %s", to)
		}
	}
}

func TestIsSettled(t *testing.T) {
	for status, want := range map[TicketStatus]bool{
		TicketStatusOpen:       false,
		TicketStatusAssigned:   false,
		TicketStatusInProgress: false,
		TicketStatusEscalated:  false,
		TicketStatusResolved:   true,
		TicketStatusClosed:     true,
	} {
		ticket := Ticket{Status: status}
		if got := ticket.IsSettled(); got != want {
			t.Errorf("IsSettled(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestCanEscalate(t *testing.T) {
	for status, want := range map[TicketStatus]bool{
		TicketStatusOpen:       false,
		TicketStatusAssigned:   true,
		TicketStatusInProgress: true,
		TicketStatusEscalated:  false,
		TicketStatusResolved:   false,
		TicketStatusClosed:     false,
	} {
		ticket := Ticket{Status: status}
		if got := ticket.CanEscalate(); got != want {
			t.Errorf("CanEscalate(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestReportPriorityMapping(t *testing.T) {
	cases := map[Severity]TicketPriority{
		1: TicketPriorityLow,
		2: TicketPriorityLow,
		3: TicketPriorityMedium,
		4: TicketPriorityHigh,
		5: TicketPriorityUrgent,
		7: TicketPriorityUrgent,
	}
	for severity, want := range cases {
		report := Report{Severity: severity}
		if got := report.Priority(); got != want {
			t.Errorf("Priority(severity=%d) = %s, want %s", severity, got, want)
		}
	}
}
