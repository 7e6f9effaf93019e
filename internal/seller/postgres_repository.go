package seller

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL seller repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves one seller profile by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT seller_id, display_name, avatar_url, rating, created_at
		FROM sellers
		WHERE seller_id = $1
	`

	var p Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Rating,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs retrieves profiles for a set of sellers in one query.
func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*Profile, error) {
	if len(ids) == 0 {
		return map[string]*Profile{}, nil
	}

	query := `
		SELECT seller_id, display_name, avatar_url, rating, created_at
		FROM sellers
		WHERE seller_id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*Profile, len(ids))
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.Rating, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
