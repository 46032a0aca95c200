package service

import (
	"context"
	"sync"
	"testing"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

func TestAddParticipantRejectsRosterMembers(t *testing.T) {
	env := newTestEnv(nil, domain.User{ID: "citizen-1", Name: "Dana", Role: domain.RoleCitizen, Status: domain.UserStatusActive})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)

	// The reporter is already on the roster.
	_, err := env.participants.AddParticipant(context.Background(), analystActor, ticket.ID, "citizen-1", true, "")
	if !errorutil.IsCode(err, "DUPLICATE") {
		t.Fatalf("expected DUPLICATE, got %v", err)
	}
}

func TestAddParticipantRequiresStaff(t *testing.T) {
	env := newTestEnv(nil, domain.User{ID: "citizen-2", Name: "Kim", Role: domain.RoleCitizen, Status: domain.UserStatusActive})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)

	_, err := env.participants.AddParticipant(context.Background(), citizenActor, ticket.ID, "citizen-2", true, "")
	if !errorutil.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestAddParticipantUnknownUser(t *testing.T) {
	env := newTestEnv(nil)
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)

	_, err := env.participants.AddParticipant(context.Background(), analystActor, ticket.ID, "ghost", true, "")
	if !errorutil.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRemoveParticipantSoftDeletes(t *testing.T) {
	env := newTestEnv(nil, domain.User{ID: "citizen-2", Name: "Kim", Role: domain.RoleCitizen, Status: domain.UserStatusActive})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)
	ctx := context.Background()

	if _, err := env.participants.AddParticipant(ctx, analystActor, ticket.ID, "citizen-2", true, "family contact"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.participants.RemoveParticipant(ctx, analystActor, ticket.ID, "citizen-2"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	active, err := env.participants.ListParticipants(ctx, analystActor, ticket.ID, false)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active participants, got %d", len(active))
	}

	all, err := env.participants.ListParticipants(ctx, analystActor, ticket.ID, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].IsActive {
		t.Fatalf("removed row should remain inactive for audit, got %+v", all)
	}

	// Removing again reports the participant as gone.
	if err := env.participants.RemoveParticipant(ctx, analystActor, ticket.ID, "citizen-2"); !errorutil.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAddParticipantConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(nil, domain.User{ID: "citizen-2", Name: "Kim", Role: domain.RoleCitizen, Status: domain.UserStatusActive})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.participants.AddParticipant(context.Background(), analystActor, ticket.ID, "citizen-2", true, "")
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errorutil.IsCode(err, "DUPLICATE"):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || duplicates != attempts-1 {
		t.Fatalf("expected exactly one success, got %d successes / %d duplicates", succeeded, duplicates)
	}

	active, _ := env.participantRepo.ListByTicket(context.Background(), ticket.ID, true)
	if len(active) != 1 {
		t.Fatalf("expected one active row, got %d", len(active))
	}
}

func TestReAddAfterRemovalReactivates(t *testing.T) {
	env := newTestEnv(nil, domain.User{ID: "citizen-2", Name: "Kim", Role: domain.RoleCitizen, Status: domain.UserStatusActive})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)
	ctx := context.Background()

	if _, err := env.participants.AddParticipant(ctx, analystActor, ticket.ID, "citizen-2", false, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.participants.RemoveParticipant(ctx, analystActor, ticket.ID, "citizen-2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := env.participants.AddParticipant(ctx, analystActor, ticket.ID, "citizen-2", true, "back again"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	active, _ := env.participantRepo.ListByTicket(ctx, ticket.ID, true)
	if len(active) != 1 || !active[0].CanMessage {
		t.Fatalf("expected one reactivated row with messaging rights, got %+v", active)
	}
}
