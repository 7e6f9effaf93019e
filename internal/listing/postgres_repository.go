package listing

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

// NewPostgresRepository creates a new PostgreSQL listing repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const listingColumns = `
	listing_id, seller_id, title, body_type, make, model, year,
	price, mileage, condition, fuel_type, location, trade_considered,
	created_at, updated_at
`

// Get retrieves a listing by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Listing, error) {
	query := `SELECT` + listingColumns + `FROM listings WHERE listing_id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// ListTradeCandidates returns trade-considered listings from other sellers.
func (r *PostgresRepository) ListTradeCandidates(ctx context.Context, excludeSellerID, excludeListingID string) ([]*Listing, error) {
	query := `
		SELECT` + listingColumns + `
		FROM listings
		WHERE trade_considered = TRUE
		  AND seller_id <> $1
		  AND listing_id <> $2
		ORDER BY listing_id
	`

	rows, err := r.pool.Query(ctx, query, excludeSellerID, excludeListingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetTradePreferences retrieves a seller's stored trade preferences.
func (r *PostgresRepository) GetTradePreferences(ctx context.Context, sellerID string) (*TradePreferences, error) {
	query := `
		SELECT
			body_types, price_min, price_max, year_min, year_max,
			makes, mileage_max, conditions, fuel_types
		FROM trade_preferences
		WHERE seller_id = $1
	`

	var p TradePreferences
	err := r.pool.QueryRow(ctx, query, sellerID).Scan(
		&p.BodyTypes,
		&p.PriceMin,
		&p.PriceMax,
		&p.YearMin,
		&p.YearMax,
		&p.Makes,
		&p.MileageMax,
		&p.Conditions,
		&p.FuelTypes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPreferencesNotFound
		}
		return nil, err
	}

	return p.Normalized(), nil
}

func scanListing(row pgx.Row) (*Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.BodyType,
		&l.Make,
		&l.Model,
		&l.Year,
		&l.Price,
		&l.Mileage,
		&l.Condition,
		&l.FuelType,
		&l.Location,
		&l.TradeConsidered,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
