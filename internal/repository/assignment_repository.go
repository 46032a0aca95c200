package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// AssignmentRepository stores authority worklist grants. One row per
// (ticket, authority); upserting the same pair overwrites the message.
type AssignmentRepository interface {
	Upsert(ctx context.Context, assignment *domain.AuthorityAssignment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuthorityAssignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Upsert(ctx context.Context, assignment *domain.AuthorityAssignment) error {
	const query = `
        INSERT INTO authority_assignments (ticket_id, authority_id, message)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, authority_id) DO UPDATE
            SET message=EXCLUDED.message, assigned_at=NOW()
        RETURNING id, assigned_at`
	return r.pool.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.AuthorityID,
		assignment.Message,
	).Scan(&assignment.ID, &assignment.AssignedAt)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuthorityAssignment, error) {
	const query = `
        SELECT id, ticket_id, authority_id, message, assigned_at
        FROM authority_assignments WHERE ticket_id=$1 ORDER BY assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuthorityAssignment
	for rows.Next() {
		var a domain.AuthorityAssignment
		if err := rows.Scan(&a.ID, &a.TicketID, &a.AuthorityID, &a.Message, &a.AssignedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
