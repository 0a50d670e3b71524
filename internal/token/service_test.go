// Landgrid | 2026
// service_test.go

package token

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/config"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	minter   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

func newTestToken(t *testing.T) *Service {
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
	roles := access.NewService(runner, access.NewRepository(), slog.Default())
	tokens := NewService(runner, NewRepository(), roles, slog.Default())

	err = runner.RunGenesis(ctx, deployer, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		return roles.Genesis(ctx, uow, deployer, minter, false)
	})
	if err != nil {
		t.Fatalf("genesis: %v", err)
	}

	return tokens
}

func wantBalance(t *testing.T, svc *Service, account common.Address, want string) {
	t.Helper()
	balance, err := svc.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of: %v", err)
	}
	if balance.String() != want {
		t.Fatalf("balance of %s = %s, want %s", account.Hex(), balance.String(), want)
	}
}

func TestMintRequiresMinterRole(t *testing.T) {
	svc := newTestToken(t)
	ctx := context.Background()

	err := svc.Mint(ctx, alice, alice, core.AmountFromUint64(100))
	if !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("mint by outsider = %v, want ErrMissingRole", err)
	}

	if err := svc.Mint(ctx, minter, alice, core.AmountFromUint64(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	wantBalance(t, svc, alice, "100")

	total, err := svc.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("total supply: %v", err)
	}
	if total.String() != "100" {
		t.Fatalf("total supply = %s, want 100", total.String())
	}
}

func TestTransferChecksBalance(t *testing.T) {
	svc := newTestToken(t)
	ctx := context.Background()

	if err := svc.Mint(ctx, minter, alice, core.AmountFromUint64(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	err := svc.Transfer(ctx, alice, bob, core.AmountFromUint64(51))
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("overdraft = %v, want ErrInsufficientBalance", err)
	}
	appErr, ok := core.AsAppError(err)
	if !ok || appErr.Message != "ERC20: transfer amount exceeds balance" {
		t.Fatalf("message = %v", err)
	}
	wantBalance(t, svc, alice, "50")
	wantBalance(t, svc, bob, "0")

	if err := svc.Transfer(ctx, alice, bob, core.AmountFromUint64(20)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	wantBalance(t, svc, alice, "30")
	wantBalance(t, svc, bob, "20")
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	svc := newTestToken(t)
	ctx := context.Background()

	if err := svc.Mint(ctx, minter, alice, core.AmountFromUint64(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	err := svc.TransferFrom(ctx, bob, alice, bob, core.AmountFromUint64(10))
	if !errors.Is(err, core.ErrInsufficientAllowance) {
		t.Fatalf("unapproved pull = %v, want ErrInsufficientAllowance", err)
	}

	if err := svc.Approve(ctx, alice, bob, core.AmountFromUint64(30)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svc.TransferFrom(ctx, bob, alice, bob, core.AmountFromUint64(10)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}
	wantBalance(t, svc, bob, "10")

	remaining, err := svc.Allowance(ctx, alice, bob)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if remaining.String() != "20" {
		t.Fatalf("allowance = %s, want 20", remaining.String())
	}

	err = svc.TransferFrom(ctx, bob, alice, bob, core.AmountFromUint64(21))
	if !errors.Is(err, core.ErrInsufficientAllowance) {
		t.Fatalf("pull over allowance = %v, want ErrInsufficientAllowance", err)
	}
}

func TestUnlimitedAllowanceIsNotDecremented(t *testing.T) {
	svc := newTestToken(t)
	ctx := context.Background()

	if err := svc.Mint(ctx, minter, alice, core.AmountFromUint64(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := svc.Approve(ctx, alice, bob, MaxAllowance); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := svc.TransferFrom(ctx, bob, alice, bob, core.AmountFromUint64(40)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}

	remaining, err := svc.Allowance(ctx, alice, bob)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if remaining.Cmp(MaxAllowance) != 0 {
		t.Fatalf("unlimited allowance was decremented to %s", remaining.String())
	}
}
