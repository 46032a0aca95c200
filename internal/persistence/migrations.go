package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrations are applied in order at startup. Statements are idempotent so
// repeated boots are safe. The UNIQUE constraints on tickets.report_id and
// ticket_participants(ticket_id, user_id) back the duplicate-ticket and
// duplicate-participant guarantees; pre-checks alone would leave race windows.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        role TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'active',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS authorities (
        user_id UUID PRIMARY KEY REFERENCES users(id),
        name TEXT NOT NULL,
        organization TEXT NOT NULL,
        region TEXT NOT NULL,
        hazard_types TEXT[] NOT NULL DEFAULT '{}',
        active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS reports (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        reporter_id UUID NOT NULL REFERENCES users(id),
        hazard_type TEXT NOT NULL,
        severity INT NOT NULL,
        region TEXT NOT NULL,
        latitude DOUBLE PRECISION NOT NULL,
        longitude DOUBLE PRECISION NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        evidence_ids TEXT[] NOT NULL DEFAULT '{}',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS verification_results (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        report_id UUID NOT NULL REFERENCES reports(id),
        composite DOUBLE PRECISION NOT NULL,
        decision TEXT NOT NULL,
        layers JSONB NOT NULL DEFAULT '[]',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS tickets (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        report_id UUID NOT NULL UNIQUE REFERENCES reports(id),
        status TEXT NOT NULL DEFAULT 'open',
        priority TEXT NOT NULL DEFAULT 'medium',
        reporter_id UUID NOT NULL REFERENCES users(id),
        assigned_analyst_id UUID REFERENCES users(id),
        authority_id UUID REFERENCES users(id),
        region TEXT NOT NULL,
        hazard_type TEXT NOT NULL,
        response_due TIMESTAMPTZ NOT NULL,
        resolution_due TIMESTAMPTZ NOT NULL,
        responded_at TIMESTAMPTZ,
        resolved_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS ticket_messages (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        ticket_id UUID NOT NULL REFERENCES tickets(id),
        thread TEXT NOT NULL,
        sender_id UUID REFERENCES users(id),
        sender_role TEXT NOT NULL,
        content TEXT NOT NULL,
        is_internal BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_messages_ticket_thread
        ON ticket_messages (ticket_id, thread, created_at)`,
	`CREATE TABLE IF NOT EXISTS ticket_participants (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        ticket_id UUID NOT NULL REFERENCES tickets(id),
        user_id UUID NOT NULL REFERENCES users(id),
        role TEXT NOT NULL,
        can_message BOOLEAN NOT NULL DEFAULT TRUE,
        notes TEXT NOT NULL DEFAULT '',
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (ticket_id, user_id)
    )`,
	`CREATE TABLE IF NOT EXISTS ticket_escalations (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        ticket_id UUID NOT NULL REFERENCES tickets(id),
        from_user_id UUID REFERENCES users(id),
        to_user_id UUID NOT NULL REFERENCES users(id),
        reason TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS authority_assignments (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        ticket_id UUID NOT NULL REFERENCES tickets(id),
        authority_id UUID NOT NULL REFERENCES users(id),
        message TEXT NOT NULL DEFAULT '',
        assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (ticket_id, authority_id)
    )`,
	`CREATE TABLE IF NOT EXISTS ticket_history (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        ticket_id UUID NOT NULL REFERENCES tickets(id),
        actor_role TEXT NOT NULL,
        actor_id UUID,
        change_type TEXT NOT NULL,
        old_value JSONB,
        new_value JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
}

// RunMigrations applies the embedded schema statements in order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(migrations)))
	return nil
}
