// Landgrid | 2026
// event.go

package ledger

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cryptocountry/landgrid/internal/core"
)

// Event kinds recorded in the journal. One row is written per emitted
// record, inside the same transaction as the mutation it describes.
const (
	KindOwnershipChanged   = "ownership_changed"
	KindNewParcel          = "new_parcel"
	KindRoleGranted        = "role_granted"
	KindRoleRevoked        = "role_revoked"
	KindRoleAdminChanged   = "role_admin_changed"
	KindLandSold           = "land_sold"
	KindBaseURIChanged     = "base_uri_changed"
	KindTransferFeeChanged = "transfer_fee_changed"
	KindPaused             = "paused"
	KindUnpaused           = "unpaused"
	KindTokenTransfer      = "token_transfer"
	KindTokenApproval      = "token_approval"
)

// ZeroAddress is the null-account sentinel: the "from" of a mint and the
// currency marker for native settlement.
var ZeroAddress = common.Address{}

type Event struct {
	Seq        uint64          `db:"seq"         json:"seq"`
	Kind       string          `db:"kind"        json:"kind"`
	Payload    json.RawMessage `db:"payload"     json:"payload"`
	RecordedAt time.Time       `db:"recorded_at" json:"recorded_at"`
}

// OwnershipChanged is emitted by every mint (From = zero address) and
// every transfer.
type OwnershipChanged struct {
	From     common.Address `json:"from"`
	To       common.Address `json:"to"`
	ParcelID uint64         `json:"parcel_id"`
}

// NewParcel is emitted once per minted parcel, alongside the
// OwnershipChanged record.
type NewParcel struct {
	ResidenceType uint8          `json:"residence_type"`
	ParcelID      uint64         `json:"parcel_id"`
	To            common.Address `json:"to"`
}

type RoleGranted struct {
	Role    common.Hash    `json:"role"`
	Account common.Address `json:"account"`
	Sender  common.Address `json:"sender"`
}

type RoleRevoked struct {
	Role    common.Hash    `json:"role"`
	Account common.Address `json:"account"`
	Sender  common.Address `json:"sender"`
}

type RoleAdminChanged struct {
	Role          common.Hash `json:"role"`
	PreviousAdmin common.Hash `json:"previous_admin"`
	NewAdmin      common.Hash `json:"new_admin"`
}

// LandSold is emitted once per successful buy, covering every parcel
// minted by that call.
type LandSold struct {
	Amount        uint8          `json:"amount"`
	ResidenceType uint8          `json:"residence_type"`
	ParcelIDs     []uint64       `json:"parcel_ids"`
	Buyer         common.Address `json:"buyer"`
	ReferralCode  uint32         `json:"referral_code"`
	TotalPaid     core.Amount    `json:"total_paid"`
	Currency      common.Address `json:"currency"`
}

type BaseURIChanged struct {
	BaseURI string         `json:"base_uri"`
	Sender  common.Address `json:"sender"`
}

type TransferFeeChanged struct {
	Fee    core.Amount    `json:"fee"`
	Sender common.Address `json:"sender"`
}

type Paused struct {
	Account common.Address `json:"account"`
}

type Unpaused struct {
	Account common.Address `json:"account"`
}

type TokenTransfer struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value core.Amount    `json:"value"`
}

type TokenApproval struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Value   core.Amount    `json:"value"`
}
