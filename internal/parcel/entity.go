// Landgrid | 2026
// entity.go

package parcel

import (
	"time"

	"github.com/cryptocountry/landgrid/internal/core"
)

// Parcel is one registered plot. IDs are allocated sequentially from 1
// and never reused.
type Parcel struct {
	ID            uint64       `db:"id"`
	Owner         core.Address `db:"owner"`
	ResidenceType uint8        `db:"residence_type"`
	MintedAt      time.Time    `db:"minted_at"`
}

// RegistryConfig is the registry's singleton settings row. Collected
// fees accumulate transfer payments retained by the registry.
type RegistryConfig struct {
	BaseURI       string      `db:"base_uri"`
	TransferFee   core.Amount `db:"transfer_fee"`
	Paused        bool        `db:"paused"`
	CollectedFees core.Amount `db:"collected_fees"`
}
