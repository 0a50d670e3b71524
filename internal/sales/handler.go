// Landgrid | 2026
// handler.go

package sales

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/middleware"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service, validate *validator.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/tiers", h.ListTiers)
	r.Get("/tiers/{residenceType}/sold", h.GetSold)
	r.Get("/tiers/{residenceType}/price/{currency}", h.GetTokenPrice)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/buy/native", h.BuyNative)
		r.Post("/buy/token", h.BuyWithToken)
		r.Get("/mine", h.MySales)
		r.Put("/limits", h.SetLimits)
		r.Put("/prices/native", h.SetNativePrices)
		r.Put("/prices/token", h.SetTokenPrices)
		r.Put("/sold", h.SetSold)
	})

	return r
}

func residenceTypeParam(r *http.Request) (uint8, error) {
	rt, err := strconv.ParseUint(chi.URLParam(r, "residenceType"), 10, 8)
	if err != nil || rt == 0 {
		return 0, core.InvalidInputError("invalid residence type")
	}
	return uint8(rt), nil
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.Tiers(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	out := make([]TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, toTierResponse(tier))
	}
	core.OK(w, out)
}

func (h *Handler) GetSold(w http.ResponseWriter, r *http.Request) {
	rt, err := residenceTypeParam(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	sold, err := h.service.GetSold(r.Context(), rt)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, SoldResponse{ResidenceType: rt, Sold: sold})
}

func (h *Handler) GetTokenPrice(w http.ResponseWriter, r *http.Request) {
	rt, err := residenceTypeParam(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	currency := chi.URLParam(r, "currency")
	if !common.IsHexAddress(currency) {
		core.BadRequest(w, "invalid currency address")
		return
	}

	price, err := h.service.TokenPriceOf(r.Context(), common.HexToAddress(currency), rt)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	out := TokenPriceResponse{
		Currency:      common.HexToAddress(currency).Hex(),
		ResidenceType: rt,
	}
	if price != nil {
		s := price.String()
		out.Price = &s
	}
	core.OK(w, out)
}

func (h *Handler) BuyNative(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req BuyNativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	payment, err := core.ParseAmount(req.Payment)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	result, err := h.service.BuyNative(
		r.Context(), buyer, req.ResidenceType, req.Amount, req.ReferralCode, payment,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toBuyResponse(result))
}

func (h *Handler) BuyWithToken(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req BuyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.BuyWithToken(
		r.Context(), buyer, req.ResidenceType, req.Amount, req.ReferralCode,
		common.HexToAddress(req.Currency),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toBuyResponse(result))
}

func (h *Handler) MySales(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	out, err := h.service.SalesOf(r.Context(), buyer)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toSaleResponses(out))
}

func (h *Handler) SetLimits(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entries := make([]CountEntry, 0, len(req.Limits))
	for _, e := range req.Limits {
		entries = append(entries, CountEntry{ResidenceType: e.ResidenceType, Count: e.Limit})
	}

	if err := h.service.SetLimits(r.Context(), sender, entries); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetNativePrices(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetNativePricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entries, err := parsePriceEntries(req.Prices)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.SetNativePrices(r.Context(), sender, entries); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetTokenPrices(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetTokenPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entries, err := parsePriceEntries(req.Prices)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	err = h.service.SetTokenPrices(
		r.Context(), sender, common.HexToAddress(req.Currency), entries,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetSold(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetSoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entries := make([]CountEntry, 0, len(req.Counters))
	for _, e := range req.Counters {
		entries = append(entries, CountEntry{ResidenceType: e.ResidenceType, Count: e.Sold})
	}

	if err := h.service.SetSold(r.Context(), sender, entries); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
