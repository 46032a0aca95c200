package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// AuthorityRepository is the directory of responder organizations.
type AuthorityRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Authority, error)
	Search(ctx context.Context, term string, limit, offset int) ([]domain.Authority, error)
	ListByJurisdiction(ctx context.Context, region string, hazard domain.HazardType) ([]domain.Authority, error)
}

type authorityRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorityRepository builds repository.
func NewAuthorityRepository(pool *pgxpool.Pool) AuthorityRepository {
	return &authorityRepository{pool: pool}
}

const authorityColumns = `user_id, name, organization, region, hazard_types, active, created_at, updated_at`

func (r *authorityRepository) GetByUserID(ctx context.Context, userID string) (*domain.Authority, error) {
	const query = `SELECT ` + authorityColumns + ` FROM authorities WHERE user_id=$1`
	var authority domain.Authority
	var hazardTypes []string
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&authority.UserID,
		&authority.Name,
		&authority.Organization,
		&authority.Region,
		&hazardTypes,
		&authority.Active,
		&authority.CreatedAt,
		&authority.UpdatedAt,
	); err != nil {
		return nil, err
	}
	authority.HazardTypes = toHazardTypes(hazardTypes)
	return &authority, nil
}

// Search finds authorities by name or organization, paginated.
func (r *authorityRepository) Search(ctx context.Context, term string, limit, offset int) ([]domain.Authority, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + authorityColumns + ` FROM authorities WHERE active=TRUE`
	args := []any{}
	if strings.TrimSpace(term) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(term))+"%")
		query += ` AND (LOWER(name) LIKE $1 OR LOWER(organization) LIKE $1)`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuthorities(rows)
}

// ListByJurisdiction returns active authorities covering the region and
// hazard type.
func (r *authorityRepository) ListByJurisdiction(ctx context.Context, region string, hazard domain.HazardType) ([]domain.Authority, error) {
	const query = `SELECT ` + authorityColumns + `
        FROM authorities
        WHERE active=TRUE AND region=$1 AND $2 = ANY(hazard_types)
        ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, region, string(hazard))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuthorities(rows)
}

func scanAuthorities(rows pgx.Rows) ([]domain.Authority, error) {
	var result []domain.Authority
	for rows.Next() {
		var authority domain.Authority
		var hazardTypes []string
		if err := rows.Scan(
			&authority.UserID,
			&authority.Name,
			&authority.Organization,
			&authority.Region,
			&hazardTypes,
			&authority.Active,
			&authority.CreatedAt,
			&authority.UpdatedAt,
		); err != nil {
			return nil, err
		}
		authority.HazardTypes = toHazardTypes(hazardTypes)
		result = append(result, authority)
	}
	return result, rows.Err()
}

func toHazardTypes(values []string) []domain.HazardType {
	out := make([]domain.HazardType, 0, len(values))
	for _, v := range values {
		out = append(out, domain.HazardType(v))
	}
	return out
}
