package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// VerificationRepository persists aggregation outcomes for audit.
type VerificationRepository interface {
	Create(ctx context.Context, result *domain.VerificationResult) error
	ListByReport(ctx context.Context, reportID string) ([]domain.VerificationResult, error)
}

type verificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository builds repository.
func NewVerificationRepository(pool *pgxpool.Pool) VerificationRepository {
	return &verificationRepository{pool: pool}
}

type layerRow struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

func (r *verificationRepository) Create(ctx context.Context, result *domain.VerificationResult) error {
	layers := make([]layerRow, 0, len(result.Layers))
	for _, l := range result.Layers {
		layers = append(layers, layerRow{Name: l.Name, Score: l.Score, Status: string(l.Status)})
	}
	raw, err := json.Marshal(layers)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO verification_results (report_id, composite, decision, layers)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	var id string
	return r.pool.QueryRow(ctx, query,
		result.ReportID,
		result.Composite,
		result.Decision,
		raw,
	).Scan(&id, &result.CreatedAt)
}

func (r *verificationRepository) ListByReport(ctx context.Context, reportID string) ([]domain.VerificationResult, error) {
	const query = `
        SELECT report_id, composite, decision, layers, created_at
        FROM verification_results WHERE report_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VerificationResult
	for rows.Next() {
		var vr domain.VerificationResult
		var raw []byte
		if err := rows.Scan(&vr.ReportID, &vr.Composite, &vr.Decision, &raw, &vr.CreatedAt); err != nil {
			return nil, err
		}
		var layers []layerRow
		if err := json.Unmarshal(raw, &layers); err != nil {
			return nil, err
		}
		for _, l := range layers {
			vr.Layers = append(vr.Layers, domain.LayerResult{
				Name:   l.Name,
				Score:  l.Score,
				Status: domain.LayerStatus(l.Status),
			})
		}
		result = append(result, vr)
	}
	return result, rows.Err()
}
