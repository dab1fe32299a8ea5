package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/infrastructure/database"
	"github.com/treviro/treviro_service/pkg/logger"
)

// MarketDataRepository implements the market data repository interface using PostgreSQL
type MarketDataRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *sqlx.DB, log *logger.Logger) *MarketDataRepository {
	return &MarketDataRepository{
		db:     db,
		logger: log,
	}
}

// UpsertSecurities replaces the listed catalog rows for the given securities
// in one transaction. A failed run leaves the previous snapshot intact.
func (r *MarketDataRepository) UpsertSecurities(ctx context.Context, securities []*entities.ListedSecurity) error {
	query := `
		INSERT INTO listed_securities (
			id, name, symbol, logo_url, price, currency, change_percent,
			market, security_type, fund_type, updated_at
		) VALUES (
			:id, :name, :symbol, :logo_url, :price, :currency, :change_percent,
			:market, :security_type, :fund_type, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name           = EXCLUDED.name,
			symbol         = EXCLUDED.symbol,
			logo_url       = EXCLUDED.logo_url,
			price          = EXCLUDED.price,
			currency       = EXCLUDED.currency,
			change_percent = EXCLUDED.change_percent,
			market         = EXCLUDED.market,
			security_type  = EXCLUDED.security_type,
			fund_type      = EXCLUDED.fund_type,
			updated_at     = EXCLUDED.updated_at`

	return database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, sec := range securities {
			if _, err := tx.NamedExecContext(ctx, query, sec); err != nil {
				return fmt.Errorf("failed to upsert security %s: %w", sec.Symbol, err)
			}
		}
		return nil
	})
}

// ListSecurities returns a page of the listed catalog.
func (r *MarketDataRepository) ListSecurities(ctx context.Context, limit, offset int) ([]*entities.ListedSecurity, error) {
	query := `
		SELECT id, name, symbol, logo_url, price, currency, change_percent,
		       market, security_type, fund_type, updated_at
		FROM listed_securities
		ORDER BY symbol
		LIMIT $1 OFFSET $2`

	securities := []*entities.ListedSecurity{}
	if err := r.db.SelectContext(ctx, &securities, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}
	return securities, nil
}

// UpsertExchangeRates replaces the rates for the given pairs in one transaction.
func (r *MarketDataRepository) UpsertExchangeRates(ctx context.Context, rates []*entities.ExchangeRate, asOf time.Time) error {
	query := `
		INSERT INTO exchange_rates (pair, rate, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pair) DO UPDATE SET
			rate       = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at`

	return database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, rate := range rates {
			if _, err := tx.ExecContext(ctx, query, rate.Pair, rate.Rate, asOf); err != nil {
				return fmt.Errorf("failed to upsert exchange rate %s: %w", rate.Pair, err)
			}
		}
		return nil
	})
}

// ListExchangeRates returns all known currency pair rates.
func (r *MarketDataRepository) ListExchangeRates(ctx context.Context) ([]*entities.ExchangeRate, error) {
	rates := []*entities.ExchangeRate{}
	query := `SELECT pair, rate, updated_at FROM exchange_rates ORDER BY pair`
	if err := r.db.SelectContext(ctx, &rates, query); err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

// UpsertGoldPrices overwrites the single gold price row.
func (r *MarketDataRepository) UpsertGoldPrices(ctx context.Context, prices *entities.GoldMarketPrices) error {
	query := `
		INSERT INTO gold_market_prices (
			id, price_per_gram_k24, price_per_gram_k21, price_per_gold_pound,
			price_per_ounce, updated_at
		) VALUES (1, :price_per_gram_k24, :price_per_gram_k21, :price_per_gold_pound,
		          :price_per_ounce, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			price_per_gram_k24   = EXCLUDED.price_per_gram_k24,
			price_per_gram_k21   = EXCLUDED.price_per_gram_k21,
			price_per_gold_pound = EXCLUDED.price_per_gold_pound,
			price_per_ounce      = EXCLUDED.price_per_ounce,
			updated_at           = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, prices); err != nil {
		r.logger.Errorw("failed to upsert gold prices", "error", err)
		return fmt.Errorf("failed to upsert gold prices: %w", err)
	}
	return nil
}

// GetGoldPrices returns the latest gold prices, or nil, nil before first ingestion.
func (r *MarketDataRepository) GetGoldPrices(ctx context.Context) (*entities.GoldMarketPrices, error) {
	query := `
		SELECT price_per_gram_k24, price_per_gram_k21, price_per_gold_pound,
		       price_per_ounce, updated_at
		FROM gold_market_prices
		WHERE id = 1`

	var prices entities.GoldMarketPrices
	err := r.db.GetContext(ctx, &prices, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gold prices: %w", err)
	}
	return &prices, nil
}
