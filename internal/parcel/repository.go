// Landgrid | 2026
// repository.go

package parcel

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

func (r *Repository) Insert(
	ctx context.Context,
	q core.DBTX,
	p Parcel,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO parcels (id, owner, residence_type, minted_at)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.Owner, p.ResidenceType, p.MintedAt,
	)
	if err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}
	return nil
}

// Get returns the parcel or ErrUnknownParcel.
func (r *Repository) Get(
	ctx context.Context,
	q core.DBTX,
	id uint64,
) (Parcel, error) {
	var p Parcel
	err := q.GetContext(ctx, &p,
		`SELECT id, owner, residence_type, minted_at FROM parcels WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Parcel{}, core.UnknownParcelError(id)
	}
	if err != nil {
		return Parcel{}, fmt.Errorf("get parcel: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateOwner(
	ctx context.Context,
	q core.DBTX,
	id uint64,
	owner common.Address,
) error {
	res, err := q.ExecContext(ctx,
		`UPDATE parcels SET owner = $1 WHERE id = $2`,
		core.Addr(owner), id,
	)
	if err != nil {
		return fmt.Errorf("update parcel owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update parcel owner: %w", err)
	}
	if n == 0 {
		return core.UnknownParcelError(id)
	}
	return nil
}

func (r *Repository) ListByOwner(
	ctx context.Context,
	q core.DBTX,
	owner common.Address,
) ([]Parcel, error) {
	parcels := []Parcel{}
	err := q.SelectContext(ctx, &parcels,
		`SELECT id, owner, residence_type, minted_at FROM parcels
		 WHERE owner = $1 ORDER BY id`,
		core.Addr(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("list parcels by owner: %w", err)
	}
	return parcels, nil
}

func (r *Repository) Count(ctx context.Context, q core.DBTX) (uint64, error) {
	var n uint64
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM parcels`); err != nil {
		return 0, fmt.Errorf("count parcels: %w", err)
	}
	return n, nil
}

func (r *Repository) GetConfig(
	ctx context.Context,
	q core.DBTX,
) (RegistryConfig, error) {
	var cfg RegistryConfig
	err := q.GetContext(ctx, &cfg,
		`SELECT base_uri, transfer_fee, paused, collected_fees
		 FROM registry_config WHERE id = 1`,
	)
	if err != nil {
		return RegistryConfig{}, fmt.Errorf("get registry config: %w", err)
	}
	return cfg, nil
}

func (r *Repository) SetBaseURI(ctx context.Context, q core.DBTX, uri string) error {
	if _, err := q.ExecContext(ctx,
		`UPDATE registry_config SET base_uri = $1 WHERE id = 1`, uri,
	); err != nil {
		return fmt.Errorf("set base uri: %w", err)
	}
	return nil
}

func (r *Repository) SetTransferFee(
	ctx context.Context,
	q core.DBTX,
	fee core.Amount,
) error {
	if _, err := q.ExecContext(ctx,
		`UPDATE registry_config SET transfer_fee = $1 WHERE id = 1`, fee,
	); err != nil {
		return fmt.Errorf("set transfer fee: %w", err)
	}
	return nil
}

func (r *Repository) SetPaused(ctx context.Context, q core.DBTX, paused bool) error {
	if _, err := q.ExecContext(ctx,
		`UPDATE registry_config SET paused = $1 WHERE id = 1`, paused,
	); err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

// AddCollectedFees accumulates a retained transfer payment.
func (r *Repository) AddCollectedFees(
	ctx context.Context,
	q core.DBTX,
	amount core.Amount,
) error {
	cfg, err := r.GetConfig(ctx, q)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE registry_config SET collected_fees = $1 WHERE id = 1`,
		cfg.CollectedFees.Add(amount),
	); err != nil {
		return fmt.Errorf("add collected fees: %w", err)
	}
	return nil
}
