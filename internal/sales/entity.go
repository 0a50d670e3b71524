// Landgrid | 2026
// entity.go

package sales

import (
	"time"

	"github.com/cryptocountry/landgrid/internal/core"
)

// ResidenceTier holds the per-category sale configuration. Limit and
// native price are nullable: a tier nobody configured sells nothing
// rather than faulting.
type ResidenceTier struct {
	ResidenceType uint8        `db:"residence_type"`
	LimitCount    *uint64      `db:"limit_count"`
	SoldCount     uint64       `db:"sold_count"`
	NativePrice   *core.Amount `db:"native_price"`
}

// TokenPrice is the per-currency price of one parcel of a residence
// type.
type TokenPrice struct {
	Currency      core.Address `db:"currency"`
	ResidenceType uint8        `db:"residence_type"`
	Price         core.Amount  `db:"price"`
}

// Sale is the persisted record of one completed buy.
type Sale struct {
	ID            string       `db:"id"`
	Buyer         core.Address `db:"buyer"`
	Amount        uint8        `db:"amount"`
	ResidenceType uint8        `db:"residence_type"`
	MintedIDs     string       `db:"minted_ids"`
	ReferralCode  uint32       `db:"referral_code"`
	TotalPaid     core.Amount  `db:"total_paid"`
	Currency      core.Address `db:"currency"`
	RecordedAt    time.Time    `db:"recorded_at"`
}

// Settlement records funds moved to the treasury for a sale.
type Settlement struct {
	ID         string       `db:"id"`
	Payer      core.Address `db:"payer"`
	Recipient  core.Address `db:"recipient"`
	Currency   core.Address `db:"currency"`
	Amount     core.Amount  `db:"amount"`
	Reason     string       `db:"reason"`
	RecordedAt time.Time    `db:"recorded_at"`
}
