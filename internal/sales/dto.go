// Landgrid | 2026
// dto.go

package sales

import "github.com/cryptocountry/landgrid/internal/core"

type BuyNativeRequest struct {
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Amount        uint8  `json:"amount"         validate:"required,min=1,max=100"`
	ReferralCode  uint32 `json:"referral_code"  validate:"omitempty"`
	Payment       string `json:"payment"        validate:"required"`
}

type BuyTokenRequest struct {
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Amount        uint8  `json:"amount"         validate:"required,min=1,max=100"`
	ReferralCode  uint32 `json:"referral_code"  validate:"omitempty"`
	Currency      string `json:"currency"       validate:"required,eth_addr"`
}

type LimitEntryRequest struct {
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Limit         uint64 `json:"limit"`
}

type PriceEntryRequest struct {
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Price         string `json:"price"          validate:"required"`
}

type SoldEntryRequest struct {
	ResidenceType uint8  `json:"residence_type" validate:"required,min=1"`
	Sold          uint64 `json:"sold"`
}

type SetLimitsRequest struct {
	Limits []LimitEntryRequest `json:"limits" validate:"required,min=1,dive"`
}

type SetNativePricesRequest struct {
	Prices []PriceEntryRequest `json:"prices" validate:"required,min=1,dive"`
}

type SetTokenPricesRequest struct {
	Currency string              `json:"currency" validate:"required,eth_addr"`
	Prices   []PriceEntryRequest `json:"prices"   validate:"required,min=1,dive"`
}

type SetSoldRequest struct {
	Counters []SoldEntryRequest `json:"counters" validate:"required,min=1,dive"`
}

type BuyResponse struct {
	SaleID    string   `json:"sale_id"`
	ParcelIDs []uint64 `json:"parcel_ids"`
	TotalPaid string   `json:"total_paid"`
	Currency  string   `json:"currency"`
}

type TierResponse struct {
	ResidenceType uint8   `json:"residence_type"`
	Limit         *uint64 `json:"limit"`
	Sold          uint64  `json:"sold"`
	NativePrice   *string `json:"native_price"`
}

type SoldResponse struct {
	ResidenceType uint8  `json:"residence_type"`
	Sold          uint64 `json:"sold"`
}

type TokenPriceResponse struct {
	Currency      string  `json:"currency"`
	ResidenceType uint8   `json:"residence_type"`
	Price         *string `json:"price"`
}

type SaleResponse struct {
	ID            string `json:"id"`
	Buyer         string `json:"buyer"`
	Amount        uint8  `json:"amount"`
	ResidenceType uint8  `json:"residence_type"`
	MintedIDs     string `json:"minted_ids"`
	ReferralCode  uint32 `json:"referral_code"`
	TotalPaid     string `json:"total_paid"`
	Currency      string `json:"currency"`
}

func toBuyResponse(res BuyResult) BuyResponse {
	return BuyResponse{
		SaleID:    res.SaleID,
		ParcelIDs: res.ParcelIDs,
		TotalPaid: res.TotalPaid.String(),
		Currency:  res.Currency.Hex(),
	}
}

func toTierResponse(tier ResidenceTier) TierResponse {
	out := TierResponse{
		ResidenceType: tier.ResidenceType,
		Limit:         tier.LimitCount,
		Sold:          tier.SoldCount,
	}
	if tier.NativePrice != nil {
		price := tier.NativePrice.String()
		out.NativePrice = &price
	}
	return out
}

func toSaleResponses(in []Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(in))
	for _, s := range in {
		out = append(out, SaleResponse{
			ID:            s.ID,
			Buyer:         s.Buyer.Hex(),
			Amount:        s.Amount,
			ResidenceType: s.ResidenceType,
			MintedIDs:     s.MintedIDs,
			ReferralCode:  s.ReferralCode,
			TotalPaid:     s.TotalPaid.String(),
			Currency:      s.Currency.Hex(),
		})
	}
	return out
}

func parsePriceEntries(in []PriceEntryRequest) ([]TierEntry, error) {
	out := make([]TierEntry, 0, len(in))
	for _, e := range in {
		price, err := core.ParseAmount(e.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, TierEntry{ResidenceType: e.ResidenceType, Value: price})
	}
	return out, nil
}
