package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// MessageRepository manages ticket thread messages. Messages are
// append-only; there is no update or delete.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string, thread *domain.Thread) ([]domain.Message, error)
	CountByThread(ctx context.Context, ticketID string) (map[domain.Thread]int, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, thread, sender_id, sender_role, content, is_internal)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.Thread,
		msg.SenderID,
		msg.SenderRole,
		msg.Content,
		msg.IsInternal,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string, thread *domain.Thread) ([]domain.Message, error) {
	query := `
        SELECT id, ticket_id, thread, sender_id, sender_role, content, is_internal, created_at
        FROM ticket_messages WHERE ticket_id=$1`
	args := []any{ticketID}
	if thread != nil {
		query += ` AND thread=$2`
		args = append(args, *thread)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Thread,
			&msg.SenderID,
			&msg.SenderRole,
			&msg.Content,
			&msg.IsInternal,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

// CountByThread derives per-thread counts by grouping stored rows, so the
// numbers can never drift from the messages themselves.
func (r *messageRepository) CountByThread(ctx context.Context, ticketID string) (map[domain.Thread]int, error) {
	const query = `
        SELECT thread, COUNT(*) FROM ticket_messages WHERE ticket_id=$1 GROUP BY thread`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Thread]int)
	for rows.Next() {
		var thread domain.Thread
		var count int
		if err := rows.Scan(&thread, &count); err != nil {
			return nil, err
		}
		counts[thread] = count
	}
	return counts, rows.Err()
}
