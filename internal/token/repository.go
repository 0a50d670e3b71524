// Landgrid | 2026
// repository.go

package token

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

// BalanceOf returns the account's balance, zero for unknown accounts.
func (r *Repository) BalanceOf(
	ctx context.Context,
	q core.DBTX,
	account common.Address,
) (core.Amount, error) {
	var balance core.Amount
	err := q.GetContext(ctx, &balance,
		`SELECT balance FROM token_balances WHERE account = $1`,
		core.Addr(account),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AmountFromUint64(0), nil
	}
	if err != nil {
		return core.Amount{}, fmt.Errorf("get token balance: %w", err)
	}
	return balance, nil
}

func (r *Repository) SetBalance(
	ctx context.Context,
	q core.DBTX,
	account common.Address,
	balance core.Amount,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO token_balances (account, balance) VALUES ($1, $2)
		 ON CONFLICT (account) DO UPDATE SET balance = $2`,
		core.Addr(account), balance,
	)
	if err != nil {
		return fmt.Errorf("set token balance: %w", err)
	}
	return nil
}

// Allowance returns what spender may still pull from owner, zero when
// no approval exists.
func (r *Repository) Allowance(
	ctx context.Context,
	q core.DBTX,
	owner common.Address,
	spender common.Address,
) (core.Amount, error) {
	var amount core.Amount
	err := q.GetContext(ctx, &amount,
		`SELECT amount FROM token_allowances WHERE owner = $1 AND spender = $2`,
		core.Addr(owner), core.Addr(spender),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AmountFromUint64(0), nil
	}
	if err != nil {
		return core.Amount{}, fmt.Errorf("get token allowance: %w", err)
	}
	return amount, nil
}

func (r *Repository) SetAllowance(
	ctx context.Context,
	q core.DBTX,
	owner common.Address,
	spender common.Address,
	amount core.Amount,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO token_allowances (owner, spender, amount) VALUES ($1, $2, $3)
		 ON CONFLICT (owner, spender) DO UPDATE SET amount = $3`,
		core.Addr(owner), core.Addr(spender), amount,
	)
	if err != nil {
		return fmt.Errorf("set token allowance: %w", err)
	}
	return nil
}

func (r *Repository) TotalSupply(ctx context.Context, q core.DBTX) (core.Amount, error) {
	var total core.Amount
	err := q.GetContext(ctx, &total, `SELECT total FROM token_supply WHERE id = 1`)
	if err != nil {
		return core.Amount{}, fmt.Errorf("get token supply: %w", err)
	}
	return total, nil
}

func (r *Repository) SetTotalSupply(
	ctx context.Context,
	q core.DBTX,
	total core.Amount,
) error {
	if _, err := q.ExecContext(ctx,
		`UPDATE token_supply SET total = $1 WHERE id = 1`, total,
	); err != nil {
		return fmt.Errorf("set token supply: %w", err)
	}
	return nil
}
