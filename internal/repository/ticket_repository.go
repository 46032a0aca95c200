package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

const pgUniqueViolation = "23505"

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByReportID(ctx context.Context, reportID string) (*domain.Ticket, error)
	ListByAuthority(ctx context.Context, authorityID string, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, report_id, status, priority, reporter_id, assigned_analyst_id, authority_id,
        region, hazard_type, response_due, resolution_due, responded_at, resolved_at, created_at, updated_at`

// Create inserts a ticket. The UNIQUE constraint on report_id closes the
// duplicate-ticket race window; a violation surfaces as a DUPLICATE error.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (report_id, status, priority, reporter_id, assigned_analyst_id, authority_id,
            region, hazard_type, response_due, resolution_due)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := querier(ctx, r.pool).QueryRow(ctx, query,
		ticket.ReportID,
		ticket.Status,
		ticket.Priority,
		ticket.ReporterID,
		ticket.AssignedAnalystID,
		ticket.AuthorityID,
		ticket.Region,
		ticket.HazardType,
		ticket.ResponseDue,
		ticket.ResolutionDue,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errorutil.NewDuplicate("ticket already exists for report", map[string]any{"report_id": ticket.ReportID})
		}
		return err
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, assigned_analyst_id=$3, authority_id=$4,
            response_due=$5, resolution_due=$6, responded_at=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	err := querier(ctx, r.pool).QueryRow(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedAnalystID,
		ticket.AuthorityID,
		ticket.ResponseDue,
		ticket.ResolutionDue,
		ticket.RespondedAt,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return pgx.ErrNoRows
	}
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByReportID(ctx context.Context, reportID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE report_id=$1`
	return r.fetchSingle(ctx, query, reportID)
}

// ListByAuthority returns the worklist for an authority: tickets it owns
// plus tickets handed to it through assignments.
func (r *ticketRepository) ListByAuthority(ctx context.Context, authorityID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT DISTINCT ON (t.id) ` + ticketColumnsPrefixed + `
        FROM tickets t
        LEFT JOIN authority_assignments a ON a.ticket_id = t.id
        WHERE t.authority_id = $1 OR a.authority_id = $1
        ORDER BY t.id, t.updated_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := querier(ctx, r.pool).Query(ctx, query, authorityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

const ticketColumnsPrefixed = `t.id, t.report_id, t.status, t.priority, t.reporter_id, t.assigned_analyst_id,
        t.authority_id, t.region, t.hazard_type, t.response_due, t.resolution_due, t.responded_at,
        t.resolved_at, t.created_at, t.updated_at`

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := querier(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.ReportID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.ReporterID,
		&ticket.AssignedAnalystID,
		&ticket.AuthorityID,
		&ticket.Region,
		&ticket.HazardType,
		&ticket.ResponseDue,
		&ticket.ResolutionDue,
		&ticket.RespondedAt,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ReportID,
			&ticket.Status,
			&ticket.Priority,
			&ticket.ReporterID,
			&ticket.AssignedAnalystID,
			&ticket.AuthorityID,
			&ticket.Region,
			&ticket.HazardType,
			&ticket.ResponseDue,
			&ticket.ResolutionDue,
			&ticket.RespondedAt,
			&ticket.ResolvedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
