// Landgrid | 2026
// uow.go

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/cryptocountry/landgrid/internal/core"
)

// UnitOfWork is the transactional boundary of one public operation: the
// stand-in for the host ledger's call atomicity. Mutations and emitted
// records ride on the same transaction; either everything commits or
// nothing does.
type UnitOfWork struct {
	Tx *sqlx.Tx

	now    time.Time
	staged []Event
}

// Now returns the wall-clock instant pinned at the start of the unit of
// work, the equivalent of the block timestamp: opaque, monotonically
// non-decreasing, identical for every row written by the same call.
func (u *UnitOfWork) Now() time.Time {
	return u.now
}

// Emit journals an event inside the current transaction and stages it for
// post-commit publication. A rolled-back call leaves no trace of its
// events anywhere.
func (u *UnitOfWork) Emit(ctx context.Context, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	seq, err := NextSequence(ctx, u.Tx, "event_seq", 1)
	if err != nil {
		return fmt.Errorf("allocate event seq: %w", err)
	}

	evt := Event{
		Seq:        seq,
		Kind:       kind,
		Payload:    data,
		RecordedAt: u.now,
	}

	const query = `
		INSERT INTO events (seq, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := u.Tx.ExecContext(
		ctx, query, evt.Seq, evt.Kind, []byte(evt.Payload), evt.RecordedAt,
	); err != nil {
		return fmt.Errorf("journal %s event: %w", kind, err)
	}

	u.staged = append(u.staged, evt)
	return nil
}

// Publisher delivers committed events to external subscribers.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Runner executes public operations as single units of work and fans
// committed events out to the publisher.
type Runner struct {
	db     *sqlx.DB
	pub    Publisher
	logger *slog.Logger
}

func NewRunner(db *sqlx.DB, pub Publisher, logger *slog.Logger) *Runner {
	if pub == nil {
		pub = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, pub: pub, logger: logger}
}

func (r *Runner) DB() *sqlx.DB {
	return r.db
}

// Run executes fn within one serializable transaction. Amount columns
// are decimal text, so balance and fee updates are read-then-write;
// serializable isolation turns a concurrent conflict on another
// connection into a commit error instead of a lost update. Events are
// published only after a successful commit; publication failures are
// logged, not propagated, since the journal row is the source of truth.
func (r *Runner) Run(
	ctx context.Context,
	fn func(ctx context.Context, uow *UnitOfWork) error,
) error {
	var staged []Event

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := core.InTxWithOptions(ctx, r.db, opts, func(tx *sqlx.Tx) error {
		uow := &UnitOfWork{Tx: tx, now: time.Now().UTC()}
		if err := fn(ctx, uow); err != nil {
			return err
		}
		staged = uow.staged
		return nil
	})
	if err != nil {
		return err
	}

	for _, evt := range staged {
		if pubErr := r.pub.Publish(ctx, evt); pubErr != nil {
			r.logger.Warn("event publish failed",
				"seq", evt.Seq,
				"kind", evt.Kind,
				"error", pubErr,
			)
		}
	}

	return nil
}

// RunGenesis executes the one-time bootstrap. A second invocation fails
// with the already-initialized error and performs no mutation.
func (r *Runner) RunGenesis(
	ctx context.Context,
	deployer common.Address,
	fn func(ctx context.Context, uow *UnitOfWork) error,
) error {
	return r.Run(ctx, func(ctx context.Context, uow *UnitOfWork) error {
		var count int
		if err := uow.Tx.GetContext(
			ctx, &count, `SELECT COUNT(*) FROM genesis WHERE id = 1`,
		); err != nil {
			return fmt.Errorf("check genesis marker: %w", err)
		}
		if count > 0 {
			return core.AlreadyInitializedError()
		}

		const query = `
			INSERT INTO genesis (id, deployer, applied_at)
			VALUES (1, $1, $2)`
		if _, err := uow.Tx.ExecContext(
			ctx, query, core.Addr(deployer), uow.now,
		); err != nil {
			return fmt.Errorf("write genesis marker: %w", err)
		}

		return fn(ctx, uow)
	})
}

// NextSequence advances a named monotonic counter by count and returns the
// first value of the reserved range. Counters are guarded by the
// surrounding transaction; a rollback releases the range.
func NextSequence(
	ctx context.Context,
	q core.DBTX,
	name string,
	count uint64,
) (uint64, error) {
	const query = `
		INSERT INTO counters (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + $2
		RETURNING value`

	var last uint64
	if err := q.GetContext(ctx, &last, query, name, count); err != nil {
		return 0, fmt.Errorf("advance counter %s: %w", name, err)
	}

	return last - count + 1, nil
}
