// Landgrid | 2026
// service.go

package sales

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ParcelMinter is the slice of the parcel registry the engine needs:
// minting inside its own buy transaction.
type ParcelMinter interface {
	MintIn(
		ctx context.Context,
		uow *ledger.UnitOfWork,
		sender common.Address,
		to common.Address,
		residenceType uint8,
		count uint64,
	) ([]uint64, error)
}

// PaymentToken settles token-priced buys. Pulls run against the buy's
// transaction so a failed pull unwinds the whole sale.
type PaymentToken interface {
	TransferFromIn(
		ctx context.Context,
		uow *ledger.UnitOfWork,
		spender common.Address,
		from common.Address,
		to common.Address,
		value core.Amount,
	) error
}

type RoleGate interface {
	RequireRoleIn(ctx context.Context, q core.DBTX, role common.Hash, account common.Address) error
}

// Service sells parcels by residence type under per-type limits and
// prices. The engine account holds the minter role and acts as the
// approved spender for token settlements.
type Service struct {
	runner   *ledger.Runner
	repo     *Repository
	parcels  ParcelMinter
	tokens   PaymentToken
	roles    RoleGate
	engine   common.Address
	treasury common.Address
	logger   *slog.Logger
}

func NewService(
	runner *ledger.Runner,
	repo *Repository,
	parcels ParcelMinter,
	tokens PaymentToken,
	roles RoleGate,
	engine common.Address,
	treasury common.Address,
	logger *slog.Logger,
) *Service {
	return &Service{
		runner:   runner,
		repo:     repo,
		parcels:  parcels,
		tokens:   tokens,
		roles:    roles,
		engine:   engine,
		treasury: treasury,
		logger:   logger.With(slog.String("component", "sales")),
	}
}

// TierEntry pairs a residence type with one configured value.
type TierEntry struct {
	ResidenceType uint8
	Value         core.Amount
}

// CountEntry pairs a residence type with a count.
type CountEntry struct {
	ResidenceType uint8
	Count         uint64
}

// BuyResult reports a completed sale.
type BuyResult struct {
	SaleID    string
	ParcelIDs []uint64
	TotalPaid core.Amount
	Currency  common.Address
}

// SetLimits replaces sale caps per residence type. Admin only.
func (s *Service) SetLimits(
	ctx context.Context,
	sender common.Address,
	entries []CountEntry,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.repo.SetLimit(ctx, uow.Tx, e.ResidenceType, e.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetNativePrices replaces per-type prices for the native currency.
// Admin only.
func (s *Service) SetNativePrices(
	ctx context.Context,
	sender common.Address,
	entries []TierEntry,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.repo.SetNativePrice(ctx, uow.Tx, e.ResidenceType, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetTokenPrices replaces per-type prices for one settlement currency.
// Admin only.
func (s *Service) SetTokenPrices(
	ctx context.Context,
	sender common.Address,
	currency common.Address,
	entries []TierEntry,
) error {
	if currency == ledger.ZeroAddress {
		return core.InvalidInputError("token prices need a non-zero currency")
	}
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		for _, e := range entries {
			err := s.repo.SetTokenPrice(ctx, uow.Tx, currency, e.ResidenceType, e.Value)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SetSold overwrites sold counters, for reconciling inventory that was
// distributed out of band. Admin only.
func (s *Service) SetSold(
	ctx context.Context,
	sender common.Address,
	entries []CountEntry,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.roles.RequireRoleIn(ctx, uow.Tx, access.RoleAdmin, sender); err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.repo.SetSold(ctx, uow.Tx, e.ResidenceType, e.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSold returns the sold counter for one residence type.
func (s *Service) GetSold(ctx context.Context, residenceType uint8) (uint64, error) {
	tier, err := s.repo.GetTier(ctx, s.runner.DB(), residenceType)
	if err != nil {
		return 0, err
	}
	return tier.SoldCount, nil
}

func (s *Service) Tiers(ctx context.Context) ([]ResidenceTier, error) {
	return s.repo.ListTiers(ctx, s.runner.DB())
}

// TokenPriceOf returns the configured price for a currency and
// residence type, nil when unconfigured.
func (s *Service) TokenPriceOf(
	ctx context.Context,
	currency common.Address,
	residenceType uint8,
) (*core.Amount, error) {
	return s.repo.GetTokenPrice(ctx, s.runner.DB(), currency, residenceType)
}

func (s *Service) SalesOf(ctx context.Context, buyer common.Address) ([]Sale, error) {
	return s.repo.ListSales(ctx, s.runner.DB(), buyer)
}

// BuyNative sells amount parcels against an attached native payment.
// The full payment is forwarded to the treasury, overpayment included.
func (s *Service) BuyNative(
	ctx context.Context,
	buyer common.Address,
	residenceType uint8,
	amount uint8,
	referralCode uint32,
	payment core.Amount,
) (BuyResult, error) {
	return s.buy(ctx, buyer, residenceType, amount, referralCode, ledger.ZeroAddress, payment)
}

// BuyWithToken sells amount parcels settled by pulling the configured
// token price from the buyer's approval to the engine.
func (s *Service) BuyWithToken(
	ctx context.Context,
	buyer common.Address,
	residenceType uint8,
	amount uint8,
	referralCode uint32,
	currency common.Address,
) (BuyResult, error) {
	if currency == ledger.ZeroAddress {
		return BuyResult{}, core.InvalidInputError("token buys need a non-zero currency")
	}
	return s.buy(ctx, buyer, residenceType, amount, referralCode, currency, core.AmountFromUint64(0))
}

func (s *Service) buy(
	ctx context.Context,
	buyer common.Address,
	residenceType uint8,
	amount uint8,
	referralCode uint32,
	currency common.Address,
	payment core.Amount,
) (BuyResult, error) {
	if amount == 0 {
		return BuyResult{}, core.InvalidInputError("amount must be positive")
	}
	if residenceType == 0 {
		return BuyResult{}, core.InvalidInputError("residence type must be positive")
	}

	var result BuyResult
	err := s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		tier, err := s.repo.GetTier(ctx, uow.Tx, residenceType)
		if err != nil {
			return err
		}
		if tier.LimitCount == nil {
			return core.UnconfiguredResidenceError(residenceType)
		}

		// The limit check and increment run as one guarded update so a
		// concurrent buy on another connection cannot oversell the tier.
		applied, err := s.repo.IncrementSold(ctx, uow.Tx, residenceType, uint64(amount))
		if err != nil {
			return err
		}
		if !applied {
			return core.InventoryExhaustedError(
				residenceType, *tier.LimitCount, tier.SoldCount, uint64(amount),
			)
		}

		total, totalPaid, err := s.price(ctx, uow, tier, currency, amount, payment)
		if err != nil {
			return err
		}

		ids, err := s.parcels.MintIn(ctx, uow, s.engine, buyer, residenceType, uint64(amount))
		if err != nil {
			return err
		}

		if currency != ledger.ZeroAddress {
			err = s.tokens.TransferFromIn(ctx, uow, s.engine, buyer, s.treasury, total)
			if err != nil {
				return err
			}
		}
		settlement := Settlement{
			ID:         uuid.NewString(),
			Payer:      core.Addr(buyer),
			Recipient:  core.Addr(s.treasury),
			Currency:   core.Addr(currency),
			Amount:     totalPaid,
			Reason:     "land_sale",
			RecordedAt: uow.Now(),
		}
		if err := s.repo.InsertSettlement(ctx, uow.Tx, settlement); err != nil {
			return err
		}

		mintedIDs, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		sale := Sale{
			ID:            uuid.NewString(),
			Buyer:         core.Addr(buyer),
			Amount:        amount,
			ResidenceType: residenceType,
			MintedIDs:     string(mintedIDs),
			ReferralCode:  referralCode,
			TotalPaid:     totalPaid,
			Currency:      core.Addr(currency),
			RecordedAt:    uow.Now(),
		}
		if err := s.repo.InsertSale(ctx, uow.Tx, sale); err != nil {
			return err
		}

		err = uow.Emit(ctx, ledger.KindLandSold, ledger.LandSold{
			Amount:        amount,
			ResidenceType: residenceType,
			ParcelIDs:     ids,
			Buyer:         buyer,
			ReferralCode:  referralCode,
			TotalPaid:     totalPaid,
			Currency:      currency,
		})
		if err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "land sold",
			slog.String("buyer", buyer.Hex()),
			slog.Int("residence_type", int(residenceType)),
			slog.Int("amount", int(amount)),
			slog.String("total_paid", totalPaid.String()),
		)

		result = BuyResult{
			SaleID:    sale.ID,
			ParcelIDs: ids,
			TotalPaid: totalPaid,
			Currency:  currency,
		}
		return nil
	})
	return result, err
}

// price resolves the unit price for the settlement currency and checks
// native payments. It returns the computed total and what the buyer
// actually pays: natives keep the attached payment, tokens pay the
// exact total.
func (s *Service) price(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	tier ResidenceTier,
	currency common.Address,
	amount uint8,
	payment core.Amount,
) (core.Amount, core.Amount, error) {
	if currency == ledger.ZeroAddress {
		if tier.NativePrice == nil {
			return core.Amount{}, core.Amount{}, core.UnconfiguredPriceTierError(
				tier.ResidenceType, ledger.ZeroAddress.Hex(),
			)
		}
		total := tier.NativePrice.MulUint64(uint64(amount))
		if payment.Cmp(total) < 0 {
			return core.Amount{}, core.Amount{}, core.InsufficientPaymentError(
				total.String(), payment.String(),
			)
		}
		return total, payment, nil
	}

	unit, err := s.repo.GetTokenPrice(ctx, uow.Tx, currency, tier.ResidenceType)
	if err != nil {
		return core.Amount{}, core.Amount{}, err
	}
	if unit == nil {
		return core.Amount{}, core.Amount{}, core.UnconfiguredPriceTierError(
			tier.ResidenceType, currency.Hex(),
		)
	}
	total := unit.MulUint64(uint64(amount))
	return total, total, nil
}
