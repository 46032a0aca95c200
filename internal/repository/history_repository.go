package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus      TicketChangeType = "status_change"
	ChangeTypeAuthority   TicketChangeType = "authority_change"
	ChangeTypeParticipant TicketChangeType = "participant_change"
	ChangeTypeEscalation  TicketChangeType = "escalation"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorRole  domain.Role
	ActorID    *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}

// HistoryRepository stores the ticket audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, entry *TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]TicketHistory, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, entry *TicketHistory) error {
	oldRaw, err := json.Marshal(entry.OldValue)
	if err != nil {
		return err
	}
	newRaw, err := json.Marshal(entry.NewValue)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_history (ticket_id, actor_role, actor_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ActorRole,
		entry.ActorID,
		entry.ChangeType,
		oldRaw,
		newRaw,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]TicketHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, actor_role, actor_id, change_type, old_value, new_value, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketHistory
	for rows.Next() {
		var entry TicketHistory
		var oldRaw, newRaw []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ActorRole,
			&entry.ActorID,
			&entry.ChangeType,
			&oldRaw,
			&newRaw,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(oldRaw) > 0 {
			if err := json.Unmarshal(oldRaw, &entry.OldValue); err != nil {
				return nil, err
			}
		}
		if len(newRaw) > 0 {
			if err := json.Unmarshal(newRaw, &entry.NewValue); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
