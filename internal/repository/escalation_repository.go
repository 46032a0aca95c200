package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// EscalationRepository stores the immutable escalation audit trail.
type EscalationRepository interface {
	Create(ctx context.Context, record *domain.EscalationRecord) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationRecord, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, record *domain.EscalationRecord) error {
	const query = `
        INSERT INTO ticket_escalations (ticket_id, from_user_id, to_user_id, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		record.TicketID,
		record.FromUserID,
		record.ToUserID,
		record.Reason,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationRecord, error) {
	const query = `
        SELECT id, ticket_id, from_user_id, to_user_id, reason, created_at
        FROM ticket_escalations WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationRecord
	for rows.Next() {
		var record domain.EscalationRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.FromUserID,
			&record.ToUserID,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
