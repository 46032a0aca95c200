package service

import (
	"context"
	"testing"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

func TestAssignIsIdempotentPerAuthority(t *testing.T) {
	env := newTestEnv(northFloodAuthorities())
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)
	ctx := context.Background()

	first, err := env.assignments.Assign(ctx, analystActor, ticket.ID, "authority-2", "please review")
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	second, err := env.assignments.Assign(ctx, analystActor, ticket.ID, "authority-2", "updated note")
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-assign must reuse the record, got %s then %s", first.ID, second.ID)
	}

	all, _ := env.assignmentRepo.ListByTicket(ctx, ticket.ID)
	if len(all) != 1 {
		t.Fatalf("expected one assignment row, got %d", len(all))
	}
	if all[0].Message != "updated note" {
		t.Fatalf("message should be overwritten, got %q", all[0].Message)
	}
}

func TestAssignSettledTicketRejected(t *testing.T) {
	env := newTestEnv(northFloodAuthorities())
	ticket := env.seedTicket(domain.TicketStatusClosed, strptr("analyst-1"), nil)

	_, err := env.assignments.Assign(context.Background(), analystActor, ticket.ID, "authority-2", "")
	if !errorutil.IsCode(err, "INVALID_STATE_TRANSITION") {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
}

func TestAssignInactiveAuthorityRejected(t *testing.T) {
	env := newTestEnv([]domain.Authority{{
		UserID: "authority-9", Name: "Dormant Org", Organization: "DO",
		Region: "north", HazardTypes: []domain.HazardType{domain.HazardFlood}, Active: false,
	}})
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)

	_, err := env.assignments.Assign(context.Background(), analystActor, ticket.ID, "authority-9", "")
	if !errorutil.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestAssignDoesNotTouchStatusOrRoster(t *testing.T) {
	env := newTestEnv(northFloodAuthorities())
	ticket := env.seedTicket(domain.TicketStatusAssigned, strptr("analyst-1"), nil)
	ctx := context.Background()

	if _, err := env.assignments.Assign(ctx, analystActor, ticket.ID, "authority-2", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	stored, _ := env.ticketRepo.GetByID(ctx, ticket.ID)
	if stored.Status != domain.TicketStatusAssigned || stored.AuthorityID != nil {
		t.Fatalf("assignment must not mutate the ticket, got %+v", stored)
	}
	roster, _ := env.tickets.ResolveRoster(ctx, stored)
	if roster.Contains("authority-2") {
		t.Fatal("assignment grant must not add to the roster")
	}
}

func TestWorklistRoleGuard(t *testing.T) {
	env := newTestEnv(northFloodAuthorities())

	if _, err := env.assignments.Worklist(context.Background(), analystActor, 20, 0); !errorutil.IsCode(err, "FORBIDDEN") {
		t.Fatalf("analyst worklist: expected FORBIDDEN, got %v", err)
	}
	authorityActor := Actor{ID: "authority-2", Role: domain.RoleAuthority}
	if _, err := env.assignments.Worklist(context.Background(), authorityActor, 20, 0); err != nil {
		t.Fatalf("authority worklist: %v", err)
	}
}

func TestSearchAuthoritiesRequiresStaff(t *testing.T) {
	env := newTestEnv(northFloodAuthorities())

	if _, err := env.assignments.SearchAuthorities(context.Background(), citizenActor, "water", 20, 0); !errorutil.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	found, err := env.assignments.SearchAuthorities(context.Background(), analystActor, "water", 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].UserID != "authority-1" {
		t.Fatalf("expected City Water Board, got %+v", found)
	}
}
