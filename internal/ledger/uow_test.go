// Landgrid | 2026
// uow_test.go

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/cryptocountry/landgrid/internal/config"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
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

	if err := Migrate(ctx, db.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db.DB
}

type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(_ context.Context, ev Event) error {
	p.events = append(p.events, ev)
	return nil
}

func TestRunCommitsAndPublishes(t *testing.T) {
	db := newTestDB(t)
	pub := &capturePublisher{}
	runner := NewRunner(db, pub, nil)
	ctx := context.Background()

	err := runner.Run(ctx, func(ctx context.Context, uow *UnitOfWork) error {
		return uow.Emit(ctx, KindNewParcel, NewParcel{
			ResidenceType: 1,
			ParcelID:      1,
			To:            common.HexToAddress("0x1111111111111111111111111111111111111111"),
		})
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if pub.events[0].Kind != KindNewParcel {
		t.Fatalf("published kind = %q, want %q", pub.events[0].Kind, KindNewParcel)
	}

	journal := NewJournal(db)
	events, err := journal.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Seq != 1 {
		t.Fatalf("journal = %+v, want one event with seq 1", events)
	}
}

func TestRunRollsBackStagedEvents(t *testing.T) {
	db := newTestDB(t)
	pub := &capturePublisher{}
	runner := NewRunner(db, pub, nil)
	ctx := context.Background()

	boom := errors.New("boom")
	err := runner.Run(ctx, func(ctx context.Context, uow *UnitOfWork) error {
		if err := uow.Emit(ctx, KindPaused, Paused{
			Account: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("run error = %v, want boom", err)
	}

	if len(pub.events) != 0 {
		t.Fatalf("published %d events after rollback, want 0", len(pub.events))
	}

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("journal rows = %d after rollback, want 0", count)
	}
}

func TestRunGenesisIsOneShot(t *testing.T) {
	db := newTestDB(t)
	runner := NewRunner(db, nil, nil)
	ctx := context.Background()
	deployer := common.HexToAddress("0x3333333333333333333333333333333333333333")

	noop := func(context.Context, *UnitOfWork) error { return nil }

	if err := runner.RunGenesis(ctx, deployer, noop); err != nil {
		t.Fatalf("first genesis: %v", err)
	}

	err := runner.RunGenesis(ctx, deployer, noop)
	if !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Fatalf("second genesis error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestNextSequenceIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	runner := NewRunner(db, nil, nil)
	ctx := context.Background()

	var first, batch, next uint64
	err := runner.Run(ctx, func(ctx context.Context, uow *UnitOfWork) error {
		var err error
		if first, err = NextSequence(ctx, uow.Tx, "parcel_id", 1); err != nil {
			return err
		}
		if batch, err = NextSequence(ctx, uow.Tx, "parcel_id", 3); err != nil {
			return err
		}
		if next, err = NextSequence(ctx, uow.Tx, "parcel_id", 1); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if first != 1 {
		t.Fatalf("first = %d, want 1", first)
	}
	if batch != 2 {
		t.Fatalf("batch start = %d, want 2", batch)
	}
	if next != 5 {
		t.Fatalf("next = %d, want 5", next)
	}
}
