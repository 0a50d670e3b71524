// Landgrid | 2026
// dto.go

package parcel

import (
	"time"

	"github.com/cryptocountry/landgrid/internal/core"
)

type MintRequest struct {
	To            string `json:"to"             validate:"required,eth_addr"`
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Amount        uint64 `json:"amount"         validate:"omitempty,min=1,max=100"`
}

type TransferRequest struct {
	To       string `json:"to"        validate:"required,eth_addr"`
	ParcelID uint64 `json:"parcel_id" validate:"required,min=1"`
	Payment  string `json:"payment"   validate:"omitempty"`
}

type SetBaseURIRequest struct {
	BaseURI string `json:"base_uri" validate:"required,max=512"`
}

type SetTransferFeeRequest struct {
	Fee string `json:"fee" validate:"required"`
}

type ParcelResponse struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	ResidenceType uint8  `json:"residence_type"`
	TokenURI      string `json:"token_uri,omitempty"`
	MintedAt      string `json:"minted_at"`
}

type MintResponse struct {
	ParcelIDs []uint64 `json:"parcel_ids"`
}

type OwnerResponse struct {
	ParcelID uint64 `json:"parcel_id"`
	Owner    string `json:"owner"`
}

type TokenURIResponse struct {
	ParcelID uint64 `json:"parcel_id"`
	TokenURI string `json:"token_uri"`
}

type ConfigResponse struct {
	BaseURI       string `json:"base_uri"`
	TransferFee   string `json:"transfer_fee"`
	Paused        bool   `json:"paused"`
	CollectedFees string `json:"collected_fees"`
}

func toParcelResponse(p Parcel, uri string) ParcelResponse {
	return ParcelResponse{
		ID:            p.ID,
		Owner:         p.Owner.Hex(),
		ResidenceType: p.ResidenceType,
		TokenURI:      uri,
		MintedAt:      p.MintedAt.UTC().Format(time.RFC3339),
	}
}

func toConfigResponse(cfg RegistryConfig) ConfigResponse {
	return ConfigResponse{
		BaseURI:       cfg.BaseURI,
		TransferFee:   cfg.TransferFee.String(),
		Paused:        cfg.Paused,
		CollectedFees: cfg.CollectedFees.String(),
	}
}

func parsePayment(s string) (core.Amount, error) {
	if s == "" {
		return core.AmountFromUint64(0), nil
	}
	return core.ParseAmount(s)
}
