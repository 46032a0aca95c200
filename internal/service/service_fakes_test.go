package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// In-memory repositories mirroring the postgres contracts, including the
// unique-constraint behavior the services rely on.

type fakeTicketRepo struct {
	mu       sync.Mutex
	seq      int
	tickets  map[string]*domain.Ticket
	byReport map[string]string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, byReport: map[string]string{}}
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	cp := *t
	return &cp
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byReport[ticket.ReportID]; exists {
		return errorutil.NewDuplicate("ticket already exists for report", map[string]any{"report_id": ticket.ReportID})
	}
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = copyTicket(ticket)
	r.byReport[ticket.ReportID] = ticket.ID
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyTicket(ticket), nil
}

func (r *fakeTicketRepo) GetByReportID(_ context.Context, reportID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byReport[reportID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyTicket(r.tickets[id]), nil
}

func (r *fakeTicketRepo) ListByAuthority(_ context.Context, authorityID string, _, _ int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.AuthorityID != nil && *ticket.AuthorityID == authorityID {
			out = append(out, *copyTicket(ticket))
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages []domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string, thread *domain.Thread) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID != ticketID {
			continue
		}
		if thread != nil && msg.Thread != *thread {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByThread(_ context.Context, ticketID string) (map[domain.Thread]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.Thread]int{}
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			counts[msg.Thread]++
		}
	}
	return counts, nil
}

func (r *fakeMessageRepo) byThread(ticketID string, thread domain.Thread) []domain.Message {
	msgs, _ := r.ListByTicket(context.Background(), ticketID, &thread)
	return msgs
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	seq          int
	participants []domain.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo { return &fakeParticipantRepo{} }

func (r *fakeParticipantRepo) Create(_ context.Context, participant *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.participants {
		p := &r.participants[i]
		if p.TicketID == participant.TicketID && p.UserID == participant.UserID {
			if p.IsActive {
				return errorutil.NewDuplicate("participant already active", nil)
			}
			p.IsActive = true
			p.CanMessage = participant.CanMessage
			p.Notes = participant.Notes
			p.UpdatedAt = time.Now()
			*participant = *p
			return nil
		}
	}
	r.seq++
	participant.ID = fmt.Sprintf("part-%d", r.seq)
	participant.IsActive = true
	participant.CreatedAt = time.Now()
	participant.UpdatedAt = participant.CreatedAt
	r.participants = append(r.participants, *participant)
	return nil
}

func (r *fakeParticipantRepo) Deactivate(_ context.Context, ticketID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.participants {
		p := &r.participants[i]
		if p.TicketID == ticketID && p.UserID == userID && p.IsActive {
			p.IsActive = false
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeParticipantRepo) ListByTicket(_ context.Context, ticketID string, activeOnly bool) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Participant
	for _, p := range r.participants {
		if p.TicketID != ticketID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeEscalationRepo struct {
	mu      sync.Mutex
	seq     int
	records []domain.EscalationRecord
}

func newFakeEscalationRepo() *fakeEscalationRepo { return &fakeEscalationRepo{} }

func (r *fakeEscalationRepo) Create(_ context.Context, record *domain.EscalationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	record.ID = fmt.Sprintf("esc-%d", r.seq)
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeEscalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.EscalationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.EscalationRecord
	for _, record := range r.records {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	seq         int
	assignments []domain.AuthorityAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo { return &fakeAssignmentRepo{} }

func (r *fakeAssignmentRepo) Upsert(_ context.Context, assignment *domain.AuthorityAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.assignments {
		a := &r.assignments[i]
		if a.TicketID == assignment.TicketID && a.AuthorityID == assignment.AuthorityID {
			a.Message = assignment.Message
			a.AssignedAt = time.Now()
			*assignment = *a
			return nil
		}
	}
	r.seq++
	assignment.ID = fmt.Sprintf("asg-%d", r.seq)
	assignment.AssignedAt = time.Now()
	r.assignments = append(r.assignments, *assignment)
	return nil
}

func (r *fakeAssignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.AuthorityAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuthorityAssignment
	for _, a := range r.assignments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAuthorityRepo struct {
	mu          sync.Mutex
	authorities map[string]domain.Authority
}

func newFakeAuthorityRepo(authorities ...domain.Authority) *fakeAuthorityRepo {
	repo := &fakeAuthorityRepo{authorities: map[string]domain.Authority{}}
	for _, a := range authorities {
		repo.authorities[a.UserID] = a
	}
	return repo
}

func (r *fakeAuthorityRepo) GetByUserID(_ context.Context, userID string) (*domain.Authority, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.authorities[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r *fakeAuthorityRepo) Search(_ context.Context, term string, _, _ int) ([]domain.Authority, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Authority
	for _, a := range r.authorities {
		if term == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(a.Organization), strings.ToLower(term)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAuthorityRepo) ListByJurisdiction(_ context.Context, region string, hazard domain.HazardType) ([]domain.Authority, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Authority
	for _, a := range r.authorities {
		if a.CoversHazard(region, hazard) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

type fakeReportRepo struct {
	reports map[string]domain.Report
}

func newFakeReportRepo(reports ...domain.Report) *fakeReportRepo {
	repo := &fakeReportRepo{reports: map[string]domain.Report{}}
	for _, report := range reports {
		repo.reports[report.ID] = report
	}
	return repo
}

func (r *fakeReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	report, ok := r.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &report, nil
}

type fakeVerificationRepo struct {
	mu      sync.Mutex
	results []domain.VerificationResult
}

func newFakeVerificationRepo() *fakeVerificationRepo { return &fakeVerificationRepo{} }

func (r *fakeVerificationRepo) Create(_ context.Context, result *domain.VerificationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *result)
	return nil
}

func (r *fakeVerificationRepo) ListByReport(_ context.Context, reportID string) ([]domain.VerificationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VerificationResult
	for _, result := range r.results {
		if result.ReportID == reportID {
			out = append(out, result)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	seq     int
	entries []repository.TicketHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo { return &fakeHistoryRepo{} }

func (r *fakeHistoryRepo) Create(_ context.Context, entry *repository.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("hist-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]repository.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// testEnv bundles every service over the fakes.
type testEnv struct {
	tickets      *TicketService
	participants *ParticipantService
	escalations  *EscalationService
	assignments  *AssignmentService

	ticketRepo      *fakeTicketRepo
	messageRepo     *fakeMessageRepo
	participantRepo *fakeParticipantRepo
	escalationRepo  *fakeEscalationRepo
	assignmentRepo  *fakeAssignmentRepo
	authorityRepo   *fakeAuthorityRepo
	userRepo        *fakeUserRepo
	historyRepo     *fakeHistoryRepo
	dispatcher      events.Dispatcher
}

var testSLATable = domain.SLATable{
	domain.TicketPriorityUrgent: {Response: 1 * time.Hour, Resolution: 12 * time.Hour},
	domain.TicketPriorityHigh:   {Response: 4 * time.Hour, Resolution: 24 * time.Hour},
	domain.TicketPriorityMedium: {Response: 8 * time.Hour, Resolution: 72 * time.Hour},
	domain.TicketPriorityLow:    {Response: 24 * time.Hour, Resolution: 168 * time.Hour},
}

func newTestEnv(authorities []domain.Authority, users ...domain.User) *testEnv {
	env := &testEnv{
		ticketRepo:      newFakeTicketRepo(),
		messageRepo:     newFakeMessageRepo(),
		participantRepo: newFakeParticipantRepo(),
		escalationRepo:  newFakeEscalationRepo(),
		assignmentRepo:  newFakeAssignmentRepo(),
		authorityRepo:   newFakeAuthorityRepo(authorities...),
		userRepo:        newFakeUserRepo(users...),
		historyRepo:     newFakeHistoryRepo(),
		dispatcher:      events.NewInMemoryDispatcher(),
	}
	locker := NewTicketLocker()
	env.tickets = NewTicketService(TicketDependencies{
		TicketRepo:      env.ticketRepo,
		MessageRepo:     env.messageRepo,
		ParticipantRepo: env.participantRepo,
		AssignmentRepo:  env.assignmentRepo,
		HistoryRepo:     env.historyRepo,
		Dispatcher:      env.dispatcher,
		Locker:          locker,
		SLATable:        testSLATable,
	})
	env.participants = NewParticipantService(env.tickets, env.participantRepo, env.userRepo, locker)
	env.escalations = NewEscalationService(EscalationDependencies{
		Tickets:         env.tickets,
		TicketRepo:      env.ticketRepo,
		EscalationRepo:  env.escalationRepo,
		AuthorityRepo:   env.authorityRepo,
		Locker:          locker,
		Metrics:         nil,
		EscalatedWindow: 24 * time.Hour,
	})
	env.assignments = NewAssignmentService(env.tickets, env.assignmentRepo, env.authorityRepo, env.ticketRepo, locker)
	return env
}

// seedTicket creates a medium-priority flood ticket in the given status.
func (env *testEnv) seedTicket(status domain.TicketStatus, analystID, authorityID *string) *domain.Ticket {
	report := &domain.Report{
		ID:         fmt.Sprintf("report-%d", env.ticketRepo.seq+1),
		ReporterID: "citizen-1",
		HazardType: domain.HazardFlood,
		Severity:   3,
		Region:     "north",
	}
	result := &domain.VerificationResult{
		ReportID:  report.ID,
		Composite: 55,
		Decision:  domain.DecisionManualReview,
	}
	ticket, err := env.tickets.CreateTicket(context.Background(), report, result)
	if err != nil {
		panic(err)
	}
	ticket.Status = status
	ticket.AssignedAnalystID = analystID
	ticket.AuthorityID = authorityID
	if err := env.ticketRepo.Update(context.Background(), ticket); err != nil {
		panic(err)
	}
	return ticket
}

func strptr(s string) *string { return &s }

var (
	analystActor = Actor{ID: "analyst-1", Role: domain.RoleAnalyst}
	citizenActor = Actor{ID: "citizen-1", Role: domain.RoleCitizen}
	adminActor   = Actor{ID: "admin-1", Role: domain.RoleAdmin}
)
