// Landgrid | 2026
// service.go

package token

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// MaxAllowance marks an unlimited approval; it is never decremented by
// TransferFrom.
var MaxAllowance = core.NewAmount(new(big.Int).Sub(
	new(big.Int).Lsh(big.NewInt(1), 256),
	big.NewInt(1),
))

type RoleGate interface {
	RequireRoleIn(ctx context.Context, q core.DBTX, role common.Hash, account common.Address) error
}

// Service is the registry's native fungible payment token. Balances
// and allowances live in the same store as the rest of the ledger so
// settlement composes into buy transactions.
type Service struct {
	runner *ledger.Runner
	repo   *Repository
	roles  RoleGate
	logger *slog.Logger
}

func NewService(
	runner *ledger.Runner,
	repo *Repository,
	roles RoleGate,
	logger *slog.Logger,
) *Service {
	return &Service{
		runner: runner,
		repo:   repo,
		roles:  roles,
		logger: logger.With(slog.String("component", "token")),
	}
}

func (s *Service) TotalSupply(ctx context.Context) (core.Amount, error) {
	return s.repo.TotalSupply(ctx, s.runner.DB())
}

func (s *Service) BalanceOf(ctx context.Context, account common.Address) (core.Amount, error) {
	return s.repo.BalanceOf(ctx, s.runner.DB(), account)
}

func (s *Service) Allowance(
	ctx context.Context,
	owner common.Address,
	spender common.Address,
) (core.Amount, error) {
	return s.repo.Allowance(ctx, s.runner.DB(), owner, spender)
}

// Mint issues new tokens to an account. Minter only.
func (s *Service) Mint(
	ctx context.Context,
	sender common.Address,
	to common.Address,
	value core.Amount,
) error {
	if to == ledger.ZeroAddress {
		return core.InvalidInputError("cannot mint to the zero address")
	}

	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleMinter, sender); err != nil {
			return err
		}

		total, err := s.repo.TotalSupply(ctx, uow.Tx)
		if err != nil {
			return err
		}
		if err := s.repo.SetTotalSupply(ctx, uow.Tx, total.Add(value)); err != nil {
			return err
		}

		balance, err := s.repo.BalanceOf(ctx, uow.Tx, to)
		if err != nil {
			return err
		}
		if err := s.repo.SetBalance(ctx, uow.Tx, to, balance.Add(value)); err != nil {
			return err
		}

		return uow.Emit(ctx, ledger.KindTokenTransfer, ledger.TokenTransfer{
			From:  ledger.ZeroAddress,
			To:    to,
			Value: value,
		})
	})
}

// Transfer moves value from the sender's own balance.
func (s *Service) Transfer(
	ctx context.Context,
	sender common.Address,
	to common.Address,
	value core.Amount,
) error {
	if to == ledger.ZeroAddress {
		return core.InvalidInputError("cannot transfer to the zero address")
	}

	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		return s.move(ctx, uow, sender, to, value)
	})
}

// Approve sets spender's allowance over the sender's balance. Setting
// MaxAllowance grants an unlimited approval.
func (s *Service) Approve(
	ctx context.Context,
	sender common.Address,
	spender common.Address,
	value core.Amount,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.repo.SetAllowance(ctx, uow.Tx, sender, spender, value); err != nil {
			return err
		}
		return uow.Emit(ctx, ledger.KindTokenApproval, ledger.TokenApproval{
			Owner:   sender,
			Spender: spender,
			Value:   value,
		})
	})
}

// TransferFrom spends an approval to move value out of from's balance.
func (s *Service) TransferFrom(
	ctx context.Context,
	spender common.Address,
	from common.Address,
	to common.Address,
	value core.Amount,
) error {
	if to == ledger.ZeroAddress {
		return core.InvalidInputError("cannot transfer to the zero address")
	}

	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		return s.TransferFromIn(ctx, uow, spender, from, to, value)
	})
}

// TransferFromIn is the transactional form used by the sales engine's
// settlement step.
func (s *Service) TransferFromIn(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	spender common.Address,
	from common.Address,
	to common.Address,
	value core.Amount,
) error {
	if spender != from {
		allowed, err := s.repo.Allowance(ctx, uow.Tx, from, spender)
		if err != nil {
			return err
		}
		if allowed.Cmp(value) < 0 {
			return core.InsufficientAllowanceError(value.String(), allowed.String())
		}
		if allowed.Cmp(MaxAllowance) != 0 {
			err = s.repo.SetAllowance(ctx, uow.Tx, from, spender, allowed.Sub(value))
			if err != nil {
				return err
			}
		}
	}

	return s.move(ctx, uow, from, to, value)
}

func (s *Service) move(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	from common.Address,
	to common.Address,
	value core.Amount,
) error {
	balance, err := s.repo.BalanceOf(ctx, uow.Tx, from)
	if err != nil {
		return err
	}
	if balance.Cmp(value) < 0 {
		return core.InsufficientBalanceError(value.String(), balance.String())
	}

	if err := s.repo.SetBalance(ctx, uow.Tx, from, balance.Sub(value)); err != nil {
		return err
	}

	target, err := s.repo.BalanceOf(ctx, uow.Tx, to)
	if err != nil {
		return err
	}
	if err := s.repo.SetBalance(ctx, uow.Tx, to, target.Add(value)); err != nil {
		return err
	}

	return uow.Emit(ctx, ledger.KindTokenTransfer, ledger.TokenTransfer{
		From:  from,
		To:    to,
		Value: value,
	})
}
