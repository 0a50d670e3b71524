// Landgrid | 2026
// service_test.go

package sales

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/config"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/cryptocountry/landgrid/internal/parcel"
	"github.com/cryptocountry/landgrid/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	engine   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	buyer    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	utc      = common.HexToAddress("0x00000000000000000000000000000000000000f6")
)

type fixture struct {
	sales   *Service
	parcels *parcel.Service
	tokens  *token.Service
	runner  *ledger.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: "sqlite3",
		URL:    ":memory:",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := ledger.Migrate(ctx, db.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	runner := ledger.NewRunner(db.DB, nil, nil)
	logger := slog.Default()
	roles := access.NewService(runner, access.NewRepository(), logger)
	parcels := parcel.NewService(runner, parcel.NewRepository(), roles, logger)
	tokens := token.NewService(runner, token.NewRepository(), roles, logger)
	engineSvc := NewService(
		runner, NewRepository(), parcels, tokens, roles, engine, treasury, logger,
	)

	err = runner.RunGenesis(ctx, deployer, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := roles.Genesis(ctx, uow, deployer, engine, false); err != nil {
			return err
		}
		return parcels.Genesis(ctx, uow, "", core.AmountFromUint64(0))
	})
	if err != nil {
		t.Fatalf("genesis: %v", err)
	}

	return &fixture{sales: engineSvc, parcels: parcels, tokens: tokens, runner: runner}
}

func (f *fixture) configureTier(t *testing.T, rt uint8, limit uint64, nativePrice uint64) {
	t.Helper()
	ctx := context.Background()

	err := f.sales.SetLimits(ctx, deployer, []CountEntry{{ResidenceType: rt, Count: limit}})
	if err != nil {
		t.Fatalf("set limits: %v", err)
	}
	err = f.sales.SetNativePrices(ctx, deployer, []TierEntry{
		{ResidenceType: rt, Value: core.AmountFromUint64(nativePrice)},
	})
	if err != nil {
		t.Fatalf("set native prices: %v", err)
	}
}

func (f *fixture) sold(t *testing.T, rt uint8) uint64 {
	t.Helper()
	sold, err := f.sales.GetSold(context.Background(), rt)
	if err != nil {
		t.Fatalf("get sold: %v", err)
	}
	return sold
}

func TestBuyNative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 10, 100)

	result, err := f.sales.BuyNative(ctx, buyer, 1, 4, 777, core.AmountFromUint64(400))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	want := []uint64{1, 2, 3, 4}
	if len(result.ParcelIDs) != len(want) {
		t.Fatalf("parcel ids = %v, want %v", result.ParcelIDs, want)
	}
	for i, id := range result.ParcelIDs {
		if id != want[i] {
			t.Fatalf("parcel ids = %v, want %v", result.ParcelIDs, want)
		}
	}
	if result.TotalPaid.String() != "400" {
		t.Fatalf("total paid = %s, want 400", result.TotalPaid.String())
	}
	if got := f.sold(t, 1); got != 4 {
		t.Fatalf("sold = %d, want 4", got)
	}

	owner, err := f.parcels.OwnerOf(ctx, 4)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != buyer {
		t.Fatalf("owner = %s, want buyer", owner.Hex())
	}

	journal := ledger.NewJournal(f.runner.DB())
	events, err := journal.ListByKind(ctx, ledger.KindLandSold, 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("land sold events = %d, want 1", len(events))
	}
}

func TestBuyNativeKeepsOverpayment(t *testing.T) {
	f := newFixture(t)
	f.configureTier(t, 1, 10, 100)

	result, err := f.sales.BuyNative(
		context.Background(), buyer, 1, 1, 0, core.AmountFromUint64(150),
	)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.TotalPaid.String() != "150" {
		t.Fatalf("total paid = %s, want 150", result.TotalPaid.String())
	}
}

func TestBuyNativeInsufficientPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 10, 100)

	_, err := f.sales.BuyNative(ctx, buyer, 1, 3, 0, core.AmountFromUint64(299))
	if !errors.Is(err, core.ErrInsufficientPayment) {
		t.Fatalf("underpaid buy = %v, want ErrInsufficientPayment", err)
	}

	if got := f.sold(t, 1); got != 0 {
		t.Fatalf("sold = %d after failed buy, want 0", got)
	}
	if _, err := f.parcels.OwnerOf(ctx, 1); !errors.Is(err, core.ErrUnknownParcel) {
		t.Fatalf("parcel minted by failed buy")
	}
}

func TestBuyRespectsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 2, 3, 10)

	_, err := f.sales.BuyNative(ctx, buyer, 2, 4, 0, core.AmountFromUint64(40))
	if !errors.Is(err, core.ErrInventoryExhausted) {
		t.Fatalf("over-limit buy = %v, want ErrInventoryExhausted", err)
	}
	if got := f.sold(t, 2); got != 0 {
		t.Fatalf("sold = %d after rejected buy, want 0", got)
	}

	if _, err := f.sales.BuyNative(ctx, buyer, 2, 3, 0, core.AmountFromUint64(30)); err != nil {
		t.Fatalf("buy up to limit: %v", err)
	}
	_, err = f.sales.BuyNative(ctx, buyer, 2, 1, 0, core.AmountFromUint64(10))
	if !errors.Is(err, core.ErrInventoryExhausted) {
		t.Fatalf("buy past limit = %v, want ErrInventoryExhausted", err)
	}
}

func TestBuyUnconfiguredResidenceType(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.BuyNative(
		context.Background(), buyer, 9, 1, 0, core.AmountFromUint64(100),
	)
	if !errors.Is(err, core.ErrUnconfiguredResidence) {
		t.Fatalf("buy unconfigured tier = %v, want ErrUnconfiguredResidence", err)
	}
}

func TestBuyUnconfiguredNativePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.sales.SetLimits(ctx, deployer, []CountEntry{{ResidenceType: 1, Count: 5}})
	if err != nil {
		t.Fatalf("set limits: %v", err)
	}

	_, err = f.sales.BuyNative(ctx, buyer, 1, 1, 0, core.AmountFromUint64(100))
	if !errors.Is(err, core.ErrUnconfiguredPriceTier) {
		t.Fatalf("buy without price = %v, want ErrUnconfiguredPriceTier", err)
	}
	if got := f.sold(t, 1); got != 0 {
		t.Fatalf("sold = %d after failed buy, want 0", got)
	}
}

func TestBuyWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 10, 100)

	err := f.sales.SetTokenPrices(ctx, deployer, utc, []TierEntry{
		{ResidenceType: 1, Value: core.AmountFromUint64(250)},
	})
	if err != nil {
		t.Fatalf("set token prices: %v", err)
	}

	// The engine account holds the minter role, so it can also issue
	// the payment token in this fixture.
	if err := f.tokens.Mint(ctx, engine, buyer, core.AmountFromUint64(1000)); err != nil {
		t.Fatalf("mint tokens: %v", err)
	}
	if err := f.tokens.Approve(ctx, buyer, engine, core.AmountFromUint64(500)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	result, err := f.sales.BuyWithToken(ctx, buyer, 1, 2, 0, utc)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.TotalPaid.String() != "500" {
		t.Fatalf("total paid = %s, want 500", result.TotalPaid.String())
	}

	balance, err := f.tokens.BalanceOf(ctx, buyer)
	if err != nil {
		t.Fatalf("balance of buyer: %v", err)
	}
	if balance.String() != "500" {
		t.Fatalf("buyer balance = %s, want 500", balance.String())
	}
	balance, err = f.tokens.BalanceOf(ctx, treasury)
	if err != nil {
		t.Fatalf("balance of treasury: %v", err)
	}
	if balance.String() != "500" {
		t.Fatalf("treasury balance = %s, want 500", balance.String())
	}
}

func TestBuyWithTokenUnwindsOnFailedPull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 10, 100)

	err := f.sales.SetTokenPrices(ctx, deployer, utc, []TierEntry{
		{ResidenceType: 1, Value: core.AmountFromUint64(250)},
	})
	if err != nil {
		t.Fatalf("set token prices: %v", err)
	}
	if err := f.tokens.Mint(ctx, engine, buyer, core.AmountFromUint64(1000)); err != nil {
		t.Fatalf("mint tokens: %v", err)
	}

	// No approval to the engine, so the pull fails and the whole sale
	// unwinds: no sold increment, no minted parcels.
	_, err = f.sales.BuyWithToken(ctx, buyer, 1, 2, 0, utc)
	if !errors.Is(err, core.ErrInsufficientAllowance) {
		t.Fatalf("unapproved buy = %v, want ErrInsufficientAllowance", err)
	}
	if got := f.sold(t, 1); got != 0 {
		t.Fatalf("sold = %d after failed buy, want 0", got)
	}
	if _, err := f.parcels.OwnerOf(ctx, 1); !errors.Is(err, core.ErrUnknownParcel) {
		t.Fatalf("parcel minted by failed buy")
	}
}

func TestBuyWithTokenUnconfiguredPrice(t *testing.T) {
	f := newFixture(t)
	f.configureTier(t, 1, 10, 100)

	_, err := f.sales.BuyWithToken(context.Background(), buyer, 1, 1, 0, utc)
	if !errors.Is(err, core.ErrUnconfiguredPriceTier) {
		t.Fatalf("buy without token price = %v, want ErrUnconfiguredPriceTier", err)
	}
}

func TestSettersRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.sales.SetLimits(ctx, buyer, []CountEntry{{ResidenceType: 1, Count: 5}})
	if !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("set limits by outsider = %v, want ErrMissingRole", err)
	}

	err = f.sales.SetSold(ctx, buyer, []CountEntry{{ResidenceType: 1, Count: 5}})
	if !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("set sold by outsider = %v, want ErrMissingRole", err)
	}
}

func TestSetSoldReconcilesInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 5, 10)

	err := f.sales.SetSold(ctx, deployer, []CountEntry{{ResidenceType: 1, Count: 4}})
	if err != nil {
		t.Fatalf("set sold: %v", err)
	}

	_, err = f.sales.BuyNative(ctx, buyer, 1, 2, 0, core.AmountFromUint64(20))
	if !errors.Is(err, core.ErrInventoryExhausted) {
		t.Fatalf("buy past reconciled sold = %v, want ErrInventoryExhausted", err)
	}

	if _, err := f.sales.BuyNative(ctx, buyer, 1, 1, 0, core.AmountFromUint64(10)); err != nil {
		t.Fatalf("buy last parcel: %v", err)
	}
	if got := f.sold(t, 1); got != 5 {
		t.Fatalf("sold = %d, want 5", got)
	}
}

func TestIncrementSoldGuardsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.configureTier(t, 1, 3, 10)

	repo := NewRepository()
	db := f.runner.DB()

	applied, err := repo.IncrementSold(ctx, db, 1, 2)
	if err != nil || !applied {
		t.Fatalf("increment by 2 = (%v, %v), want applied", applied, err)
	}

	applied, err = repo.IncrementSold(ctx, db, 1, 2)
	if err != nil {
		t.Fatalf("increment past limit: %v", err)
	}
	if applied {
		t.Fatal("increment past limit applied, want refused")
	}

	applied, err = repo.IncrementSold(ctx, db, 1, 1)
	if err != nil || !applied {
		t.Fatalf("increment to limit = (%v, %v), want applied", applied, err)
	}

	applied, err = repo.IncrementSold(ctx, db, 1, 1)
	if err != nil {
		t.Fatalf("increment at limit: %v", err)
	}
	if applied {
		t.Fatal("increment at limit applied, want refused")
	}

	tier, err := repo.GetTier(ctx, db, 1)
	if err != nil {
		t.Fatalf("get tier: %v", err)
	}
	if tier.SoldCount != 3 {
		t.Fatalf("sold = %d, want 3", tier.SoldCount)
	}

	// A tier without a limit has nothing to reserve against.
	applied, err = repo.IncrementSold(ctx, db, 9, 1)
	if err != nil {
		t.Fatalf("increment unconfigured tier: %v", err)
	}
	if applied {
		t.Fatal("increment on unconfigured tier applied, want refused")
	}
}
