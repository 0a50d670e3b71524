// Landgrid | 2026
// service.go

package parcel

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// RoleGate is the slice of the access service the registry needs.
type RoleGate interface {
	RequireRoleIn(ctx context.Context, q core.DBTX, role common.Hash, account common.Address) error
	HasRoleIn(ctx context.Context, q core.DBTX, role common.Hash, account common.Address) (bool, error)
}

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
		logger: logger.With(slog.String("component", "parcel")),
	}
}

// Genesis seeds the registry settings inside the genesis transaction.
func (s *Service) Genesis(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	baseURI string,
	transferFee core.Amount,
) error {
	if err := s.repo.SetBaseURI(ctx, uow.Tx, baseURI); err != nil {
		return err
	}
	return s.repo.SetTransferFee(ctx, uow.Tx, transferFee)
}

// Mint registers one parcel to an owner. The sender must hold the
// minter role.
func (s *Service) Mint(
	ctx context.Context,
	sender common.Address,
	to common.Address,
	residenceType uint8,
) (uint64, error) {
	var id uint64
	err := s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		ids, err := s.MintIn(ctx, uow, sender, to, residenceType, 1)
		if err != nil {
			return err
		}
		id = ids[0]
		return nil
	})
	return id, err
}

// MintBatch registers count parcels of one residence type in a single
// transaction. IDs are consecutive.
func (s *Service) MintBatch(
	ctx context.Context,
	sender common.Address,
	to common.Address,
	residenceType uint8,
	count uint64,
) ([]uint64, error) {
	var ids []uint64
	err := s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		var err error
		ids, err = s.MintIn(ctx, uow, sender, to, residenceType, count)
		return err
	})
	return ids, err
}

// MintIn is the transactional mint shared with the sales engine. Every
// parcel gets an OwnershipChanged record from the zero address plus a
// NewParcel record.
func (s *Service) MintIn(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	sender common.Address,
	to common.Address,
	residenceType uint8,
	count uint64,
) ([]uint64, error) {
	if count == 0 {
		return nil, core.InvalidInputError("mint count must be positive")
	}
	if to == ledger.ZeroAddress {
		return nil, core.InvalidInputError("cannot mint to the zero address")
	}

	if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleMinter, sender); err != nil {
		return nil, err
	}
	if err := s.requireNotPaused(ctx, uow); err != nil {
		return nil, err
	}

	first, err := ledger.NextSequence(ctx, uow.Tx, "parcel_id", count)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, count)
	for i := uint64(0); i < count; i++ {
		id := first + i
		p := Parcel{
			ID:            id,
			Owner:         core.Addr(to),
			ResidenceType: residenceType,
			MintedAt:      uow.Now(),
		}
		if err := s.repo.Insert(ctx, uow.Tx, p); err != nil {
			return nil, err
		}

		err = uow.Emit(ctx, ledger.KindOwnershipChanged, ledger.OwnershipChanged{
			From:     ledger.ZeroAddress,
			To:       to,
			ParcelID: id,
		})
		if err != nil {
			return nil, err
		}
		err = uow.Emit(ctx, ledger.KindNewParcel, ledger.NewParcel{
			ResidenceType: residenceType,
			ParcelID:      id,
			To:            to,
		})
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	s.logger.InfoContext(ctx, "parcels minted",
		slog.String("to", to.Hex()),
		slog.Int("residence_type", int(residenceType)),
		slog.Uint64("first_id", first),
		slog.Uint64("count", count),
	)

	return ids, nil
}

// Transfer moves a parcel between owners. The registry's transfer fee
// must accompany the call unless the sender holds the free-transfer
// role; whatever payment arrives is retained by the registry.
func (s *Service) Transfer(
	ctx context.Context,
	sender common.Address,
	to common.Address,
	parcelID uint64,
	payment core.Amount,
) error {
	if to == ledger.ZeroAddress {
		return core.InvalidInputError("cannot transfer to the zero address")
	}

	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.requireNotPaused(ctx, uow); err != nil {
			return err
		}

		p, err := s.repo.Get(ctx, uow.Tx, parcelID)
		if err != nil {
			return err
		}
		if p.Owner.Address != sender {
			return core.ForbiddenError("sender does not own this parcel")
		}

		cfg, err := s.repo.GetConfig(ctx, uow.Tx)
		if err != nil {
			return err
		}

		exempt, err := s.roles.HasRoleIn(ctx, uow.Tx, access.RoleFreeTransfer, sender)
		if err != nil {
			return err
		}
		if !exempt && payment.Cmp(cfg.TransferFee) < 0 {
			return core.TransferFeeRequiredError(cfg.TransferFee.String(), payment.String())
		}

		if !payment.IsZero() {
			if err := s.repo.AddCollectedFees(ctx, uow.Tx, payment); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateOwner(ctx, uow.Tx, parcelID, to); err != nil {
			return err
		}

		return uow.Emit(ctx, ledger.KindOwnershipChanged, ledger.OwnershipChanged{
			From:     sender,
			To:       to,
			ParcelID: parcelID,
		})
	})
}

// OwnerOf resolves a parcel's current owner.
func (s *Service) OwnerOf(ctx context.Context, parcelID uint64) (common.Address, error) {
	p, err := s.repo.Get(ctx, s.runner.DB(), parcelID)
	if err != nil {
		return common.Address{}, err
	}
	return p.Owner.Address, nil
}

func (s *Service) Get(ctx context.Context, parcelID uint64) (Parcel, error) {
	return s.repo.Get(ctx, s.runner.DB(), parcelID)
}

func (s *Service) ListByOwner(ctx context.Context, owner common.Address) ([]Parcel, error) {
	return s.repo.ListByOwner(ctx, s.runner.DB(), owner)
}

// TokenURI renders the parcel's metadata URI from the current base URI,
// so a later SetBaseURI retroactively changes every parcel's URI. An
// unset base URI yields an empty string.
func (s *Service) TokenURI(ctx context.Context, parcelID uint64) (string, error) {
	if _, err := s.repo.Get(ctx, s.runner.DB(), parcelID); err != nil {
		return "", err
	}

	cfg, err := s.repo.GetConfig(ctx, s.runner.DB())
	if err != nil {
		return "", err
	}
	if cfg.BaseURI == "" {
		return "", nil
	}
	return cfg.BaseURI + strconv.FormatUint(parcelID, 10), nil
}

func (s *Service) Config(ctx context.Context) (RegistryConfig, error) {
	return s.repo.GetConfig(ctx, s.runner.DB())
}

// SetBaseURI replaces the metadata URI prefix. Admin only.
func (s *Service) SetBaseURI(ctx context.Context, sender common.Address, uri string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		if err := s.repo.SetBaseURI(ctx, uow.Tx, uri); err != nil {
			return err
		}
		return uow.Emit(ctx, ledger.KindBaseURIChanged, ledger.BaseURIChanged{
			BaseURI: uri,
			Sender:  sender,
		})
	})
}

// SetTransferFee replaces the fee demanded of non-exempt transfers.
// Admin only.
func (s *Service) SetTransferFee(
	ctx context.Context,
	sender common.Address,
	fee core.Amount,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		if err := s.repo.SetTransferFee(ctx, uow.Tx, fee); err != nil {
			return err
		}
		return uow.Emit(ctx, ledger.KindTransferFeeChanged, ledger.TransferFeeChanged{
			Fee:    fee,
			Sender: sender,
		})
	})
}

// Pause halts mints, transfers, and buys. Pauser only.
func (s *Service) Pause(ctx context.Context, sender common.Address) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RolePauser, sender); err != nil {
			return err
		}
		cfg, err := s.repo.GetConfig(ctx, uow.Tx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return core.PausedError()
		}
		if err := s.repo.SetPaused(ctx, uow.Tx, true); err != nil {
			return err
		}
		return uow.Emit(ctx, ledger.KindPaused, ledger.Paused{Account: sender})
	})
}

// Unpause resumes state transitions. Pauser only.
func (s *Service) Unpause(ctx context.Context, sender common.Address) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RolePauser, sender); err != nil {
			return err
		}
		cfg, err := s.repo.GetConfig(ctx, uow.Tx)
		if err != nil {
			return err
		}
		if !cfg.Paused {
			return core.InvalidInputError("Pausable: not paused")
		}
		if err := s.repo.SetPaused(ctx, uow.Tx, false); err != nil {
			return err
		}
		return uow.Emit(ctx, ledger.KindUnpaused, ledger.Unpaused{Account: sender})
	})
}

func (s *Service) requireNotPaused(ctx context.Context, uow *ledger.UnitOfWork) error {
	cfg, err := s.repo.GetConfig(ctx, uow.Tx)
	if err != nil {
		return err
	}
	if cfg.Paused {
		return core.PausedError()
	}
	return nil
}
