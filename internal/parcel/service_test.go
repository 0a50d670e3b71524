// Landgrid | 2026
// service_test.go

package parcel

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

type fixture struct {
	parcels *Service
	roles   *access.Service
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
	roles := access.NewService(runner, access.NewRepository(), slog.Default())
	parcels := NewService(runner, NewRepository(), roles, slog.Default())

	err = runner.RunGenesis(ctx, deployer, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := roles.Genesis(ctx, uow, deployer, minter, false); err != nil {
			return err
		}
		return parcels.Genesis(ctx, uow, "https://meta.example/land/", core.AmountFromUint64(50))
	})
	if err != nil {
		t.Fatalf("genesis: %v", err)
	}

	return &fixture{parcels: parcels, roles: roles, runner: runner}
}

func TestMintAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}

	ids, err := f.parcels.MintBatch(ctx, minter, bob, 2, 3)
	if err != nil {
		t.Fatalf("mint batch: %v", err)
	}
	want := []uint64{2, 3, 4}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("batch ids = %v, want %v", ids, want)
		}
	}

	owner, err := f.parcels.OwnerOf(ctx, 3)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != bob {
		t.Fatalf("owner = %s, want %s", owner.Hex(), bob.Hex())
	}
}

func TestMintRequiresMinterRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.parcels.Mint(context.Background(), alice, alice, 1)
	if !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("mint by outsider = %v, want ErrMissingRole", err)
	}
}

func TestMintEmitsOwnershipAndNewParcel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.parcels.MintBatch(ctx, minter, alice, 1, 2); err != nil {
		t.Fatalf("mint batch: %v", err)
	}

	journal := ledger.NewJournal(f.runner.DB())
	owned, err := journal.ListByKind(ctx, ledger.KindOwnershipChanged, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	fresh, err := journal.ListByKind(ctx, ledger.KindNewParcel, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owned) != 2 || len(fresh) != 2 {
		t.Fatalf("events = %d ownership, %d new parcel, want 2 and 2", len(owned), len(fresh))
	}
}

func TestOwnerOfUnknownParcel(t *testing.T) {
	f := newFixture(t)

	_, err := f.parcels.OwnerOf(context.Background(), 99)
	if !errors.Is(err, core.ErrUnknownParcel) {
		t.Fatalf("owner of unknown = %v, want ErrUnknownParcel", err)
	}

	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Message != "ERC721: owner query for nonexistent token" {
		t.Fatalf("message = %q", appErr.Message)
	}
}

func TestTransferDemandsFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	err = f.parcels.Transfer(ctx, alice, bob, id, core.AmountFromUint64(0))
	if !errors.Is(err, core.ErrTransferFeeRequired) {
		t.Fatalf("unpaid transfer = %v, want ErrTransferFeeRequired", err)
	}

	owner, err := f.parcels.OwnerOf(ctx, id)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != alice {
		t.Fatalf("owner changed on failed transfer")
	}

	if err := f.parcels.Transfer(ctx, alice, bob, id, core.AmountFromUint64(50)); err != nil {
		t.Fatalf("paid transfer: %v", err)
	}

	owner, err = f.parcels.OwnerOf(ctx, id)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner != bob {
		t.Fatalf("owner = %s, want %s", owner.Hex(), bob.Hex())
	}

	cfg, err := f.parcels.Config(ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.CollectedFees.String() != "50" {
		t.Fatalf("collected fees = %s, want 50", cfg.CollectedFees.String())
	}
}

func TestFreeTransferRoleSkipsFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.roles.GrantRole(ctx, deployer, access.RoleFreeTransfer, alice); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := f.parcels.Transfer(ctx, alice, bob, id, core.AmountFromUint64(0)); err != nil {
		t.Fatalf("exempt transfer: %v", err)
	}
}

func TestTransferOnlyByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	err = f.parcels.Transfer(ctx, bob, bob, id, core.AmountFromUint64(50))
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("transfer by non-owner = %v, want ErrForbidden", err)
	}
}

func TestTokenURIFollowsBaseURI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	uri, err := f.parcels.TokenURI(ctx, id)
	if err != nil {
		t.Fatalf("token uri: %v", err)
	}
	if uri != "https://meta.example/land/1" {
		t.Fatalf("uri = %q", uri)
	}

	// Changing the base URI retroactively changes existing parcels.
	if err := f.parcels.SetBaseURI(ctx, deployer, "ipfs://lands/"); err != nil {
		t.Fatalf("set base uri: %v", err)
	}

	uri, err = f.parcels.TokenURI(ctx, id)
	if err != nil {
		t.Fatalf("token uri: %v", err)
	}
	if uri != "ipfs://lands/1" {
		t.Fatalf("uri after change = %q", uri)
	}

	if _, err := f.parcels.TokenURI(ctx, 42); !errors.Is(err, core.ErrUnknownParcel) {
		t.Fatalf("uri of unknown = %v, want ErrUnknownParcel", err)
	}
}

func TestSettersRequireAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.parcels.SetBaseURI(ctx, alice, "x://"); !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("set base uri by outsider = %v, want ErrMissingRole", err)
	}
	err := f.parcels.SetTransferFee(ctx, alice, core.AmountFromUint64(1))
	if !errors.Is(err, core.ErrMissingRole) {
		t.Fatalf("set fee by outsider = %v, want ErrMissingRole", err)
	}

	if err := f.parcels.SetTransferFee(ctx, deployer, core.AmountFromUint64(75)); err != nil {
		t.Fatalf("set fee by admin: %v", err)
	}
	cfg, err := f.parcels.Config(ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.TransferFee.String() != "75" {
		t.Fatalf("fee = %s, want 75", cfg.TransferFee.String())
	}
}

func TestPauseBlocksMintAndTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.parcels.Mint(ctx, minter, alice, 1)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := f.roles.GrantRole(ctx, deployer, access.RolePauser, deployer); err != nil {
		t.Fatalf("grant pauser: %v", err)
	}
	if err := f.parcels.Pause(ctx, deployer); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if _, err := f.parcels.Mint(ctx, minter, alice, 1); !errors.Is(err, core.ErrPaused) {
		t.Fatalf("mint while paused = %v, want ErrPaused", err)
	}
	err = f.parcels.Transfer(ctx, alice, bob, id, core.AmountFromUint64(50))
	if !errors.Is(err, core.ErrPaused) {
		t.Fatalf("transfer while paused = %v, want ErrPaused", err)
	}
	if err := f.parcels.Pause(ctx, deployer); !errors.Is(err, core.ErrPaused) {
		t.Fatalf("double pause = %v, want ErrPaused", err)
	}

	if err := f.parcels.Unpause(ctx, deployer); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := f.parcels.Mint(ctx, minter, alice, 1); err != nil {
		t.Fatalf("mint after unpause: %v", err)
	}
}
