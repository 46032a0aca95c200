package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// ReportRepository is a read-only lookup into the report store. Report
// ingestion and mutation happen upstream.
type ReportRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	const query = `
        SELECT id, reporter_id, hazard_type, severity, region, latitude, longitude, description, evidence_ids, created_at
        FROM reports WHERE id=$1`
	var report domain.Report
	var severity int
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.ReporterID,
		&report.HazardType,
		&severity,
		&report.Region,
		&report.Latitude,
		&report.Longitude,
		&report.Description,
		&report.EvidenceIDs,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	report.Severity = domain.Severity(severity)
	return &report, nil
}
