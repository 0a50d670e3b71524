// Landgrid | 2026
// repository.go

package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/ethereum/go-ethereum/common"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// GetTier returns the tier row or a zero-valued tier when none was
// configured yet.
func (r *Repository) GetTier(
	ctx context.Context,
	q core.DBTX,
	residenceType uint8,
) (ResidenceTier, error) {
	var tier ResidenceTier
	err := q.GetContext(ctx, &tier,
		`SELECT residence_type, limit_count, sold_count, native_price
		 FROM residence_tiers WHERE residence_type = $1`,
		residenceType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ResidenceTier{ResidenceType: residenceType}, nil
	}
	if err != nil {
		return ResidenceTier{}, fmt.Errorf("get residence tier: %w", err)
	}
	return tier, nil
}

func (r *Repository) ListTiers(ctx context.Context, q core.DBTX) ([]ResidenceTier, error) {
	tiers := []ResidenceTier{}
	err := q.SelectContext(ctx, &tiers,
		`SELECT residence_type, limit_count, sold_count, native_price
		 FROM residence_tiers ORDER BY residence_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("list residence tiers: %w", err)
	}
	return tiers, nil
}

func (r *Repository) SetLimit(
	ctx context.Context,
	q core.DBTX,
	residenceType uint8,
	limit uint64,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO residence_tiers (residence_type, limit_count, sold_count)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (residence_type) DO UPDATE SET limit_count = $2`,
		residenceType, limit,
	)
	if err != nil {
		return fmt.Errorf("set tier limit: %w", err)
	}
	return nil
}

func (r *Repository) SetNativePrice(
	ctx context.Context,
	q core.DBTX,
	residenceType uint8,
	price core.Amount,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO residence_tiers (residence_type, native_price, sold_count)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (residence_type) DO UPDATE SET native_price = $2`,
		residenceType, price,
	)
	if err != nil {
		return fmt.Errorf("set native price: %w", err)
	}
	return nil
}

// IncrementSold reserves amount units against the tier's limit in one
// guarded update. Returns false without mutating when the tier has no
// limit or the increment would exceed it, so concurrent buys cannot
// share an inventory slot.
func (r *Repository) IncrementSold(
	ctx context.Context,
	q core.DBTX,
	residenceType uint8,
	amount uint64,
) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE residence_tiers
		 SET sold_count = sold_count + $1
		 WHERE residence_type = $2
		   AND limit_count IS NOT NULL
		   AND sold_count + $1 <= limit_count`,
		amount, residenceType,
	)
	if err != nil {
		return false, fmt.Errorf("increment sold count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment sold count: %w", err)
	}
	return affected == 1, nil
}

func (r *Repository) SetSold(
	ctx context.Context,
	q core.DBTX,
	residenceType uint8,
	sold uint64,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO residence_tiers (residence_type, sold_count)
		 VALUES ($1, $2)
		 ON CONFLICT (residence_type) DO UPDATE SET sold_count = $2`,
		residenceType, sold,
	)
	if err != nil {
		return fmt.Errorf("set sold count: %w", err)
	}
	return nil
}

// GetTokenPrice returns nil when no price is configured for the pair.
func (r *Repository) GetTokenPrice(
	ctx context.Context,
	q core.DBTX,
	currency common.Address,
	residenceType uint8,
) (*core.Amount, error) {
	var price core.Amount
	err := q.GetContext(ctx, &price,
		`SELECT price FROM token_prices WHERE currency = $1 AND residence_type = $2`,
		core.Addr(currency), residenceType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token price: %w", err)
	}
	return &price, nil
}

func (r *Repository) SetTokenPrice(
	ctx context.Context,
	q core.DBTX,
	currency common.Address,
	residenceType uint8,
	price core.Amount,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO token_prices (currency, residence_type, price)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (currency, residence_type) DO UPDATE SET price = $3`,
		core.Addr(currency), residenceType, price,
	)
	if err != nil {
		return fmt.Errorf("set token price: %w", err)
	}
	return nil
}

func (r *Repository) InsertSale(ctx context.Context, q core.DBTX, s Sale) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO sales
		 (id, buyer, amount, residence_type, minted_ids, referral_code,
		  total_paid, currency, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Buyer, s.Amount, s.ResidenceType, s.MintedIDs,
		s.ReferralCode, s.TotalPaid, s.Currency, s.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *Repository) ListSales(
	ctx context.Context,
	q core.DBTX,
	buyer common.Address,
) ([]Sale, error) {
	out := []Sale{}
	err := q.SelectContext(ctx, &out,
		`SELECT id, buyer, amount, residence_type, minted_ids, referral_code,
		        total_paid, currency, recorded_at
		 FROM sales WHERE buyer = $1 ORDER BY recorded_at`,
		core.Addr(buyer),
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return out, nil
}

func (r *Repository) InsertSettlement(ctx context.Context, q core.DBTX, s Settlement) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settlements
		 (id, payer, recipient, currency, amount, reason, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Payer, s.Recipient, s.Currency, s.Amount, s.Reason, s.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}
