package postgres

import (
	"context"
	"errors"
	"fmt"

	"smm-admin-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProviderRepo implements ports.ProviderRepository.
type ProviderRepo struct {
	pool Pool
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(pool Pool) *ProviderRepo {
	return &ProviderRepo{pool: pool}
}

// Create inserts a provider with its encrypted API key.
func (r *ProviderRepo) Create(ctx context.Context, p *domain.Provider) error {
	query := `INSERT INTO providers (id, name, api_url, api_key_enc, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.APIURL, p.APIKeyEnc, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

// GetByID fetches a provider by ID.
func (r *ProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	query := `SELECT id, name, api_url, api_key_enc, created_at FROM providers WHERE id = $1`

	p := &domain.Provider{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.APIURL, &p.APIKeyEnc, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// List returns all providers.
func (r *ProviderRepo) List(ctx context.Context) ([]domain.Provider, error) {
	query := `SELECT id, name, api_url, api_key_enc, created_at FROM providers ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []domain.Provider
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.APIURL, &p.APIKeyEnc, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}
