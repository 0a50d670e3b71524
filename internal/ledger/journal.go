// Landgrid | 2026
// journal.go

package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Journal reads back the committed event log.
type Journal struct {
	db *sqlx.DB
}

func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{db: db}
}

// List returns events with seq > after, oldest first, up to limit.
func (j *Journal) List(ctx context.Context, after uint64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	events := []Event{}
	err := j.db.SelectContext(ctx, &events,
		`SELECT seq, kind, payload, recorded_at FROM events
		 WHERE seq > $1 ORDER BY seq ASC LIMIT $2`,
		after, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

// Stats summarizes the ledger for operational dashboards.
type Stats struct {
	Events      uint64 `db:"events"      json:"events"`
	Parcels     uint64 `db:"parcels"     json:"parcels"`
	Sales       uint64 `db:"sales"       json:"sales"`
	Settlements uint64 `db:"settlements" json:"settlements"`
}

func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := j.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM events)      AS events,
			(SELECT COUNT(*) FROM parcels)     AS parcels,
			(SELECT COUNT(*) FROM sales)       AS sales,
			(SELECT COUNT(*) FROM settlements) AS settlements`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("ledger stats: %w", err)
	}
	return stats, nil
}

// ListByKind filters the journal to a single event kind.
func (j *Journal) ListByKind(ctx context.Context, kind string, after uint64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	events := []Event{}
	err := j.db.SelectContext(ctx, &events,
		`SELECT seq, kind, payload, recorded_at FROM events
		 WHERE kind = $1 AND seq > $2 ORDER BY seq ASC LIMIT $3`,
		kind, after, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by kind: %w", err)
	}

	return events, nil
}
