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

// ParticipantRepository manages additional ticket participants. Removal is
// a soft delete; inactive rows stay behind for audit.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *domain.Participant) error
	Deactivate(ctx context.Context, ticketID, userID string) error
	ListByTicket(ctx context.Context, ticketID string, activeOnly bool) ([]domain.Participant, error)
}

type participantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository builds repository.
func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{pool: pool}
}

// Create inserts an active participant row. The UNIQUE (ticket_id, user_id)
// constraint guarantees at most one row per user even under concurrent adds.
func (r *participantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	const query = `
        INSERT INTO ticket_participants (ticket_id, user_id, role, can_message, notes, is_active)
        VALUES ($1,$2,$3,$4,$5,TRUE)
        ON CONFLICT (ticket_id, user_id) DO UPDATE
            SET role=EXCLUDED.role, can_message=EXCLUDED.can_message, notes=EXCLUDED.notes,
                is_active=TRUE, updated_at=NOW()
            WHERE ticket_participants.is_active = FALSE
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		participant.TicketID,
		participant.UserID,
		participant.Role,
		participant.CanMessage,
		participant.Notes,
	).Scan(&participant.ID, &participant.CreatedAt, &participant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict with an active row: the user is already a participant.
		return errorutil.NewDuplicate("user already participates in ticket", map[string]any{
			"ticket_id": participant.TicketID,
			"user_id":   participant.UserID,
		})
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errorutil.NewDuplicate("user already participates in ticket", map[string]any{
				"ticket_id": participant.TicketID,
				"user_id":   participant.UserID,
			})
		}
		return err
	}
	participant.IsActive = true
	return nil
}

func (r *participantRepository) Deactivate(ctx context.Context, ticketID, userID string) error {
	const query = `
        UPDATE ticket_participants SET is_active=FALSE, updated_at=NOW()
        WHERE ticket_id=$1 AND user_id=$2 AND is_active=TRUE`
	cmd, err := r.pool.Exec(ctx, query, ticketID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *participantRepository) ListByTicket(ctx context.Context, ticketID string, activeOnly bool) ([]domain.Participant, error) {
	query := `
        SELECT id, ticket_id, user_id, role, can_message, notes, is_active, created_at, updated_at
        FROM ticket_participants WHERE ticket_id=$1`
	if activeOnly {
		query += ` AND is_active=TRUE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(
			&p.ID,
			&p.TicketID,
			&p.UserID,
			&p.Role,
			&p.CanMessage,
			&p.Notes,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
