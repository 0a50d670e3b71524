// Landgrid | 2026
// handler.go

package parcel

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

	r.Get("/config", h.GetConfig)
	r.Get("/{id}", h.GetParcel)
	r.Get("/{id}/owner", h.GetOwner)
	r.Get("/{id}/uri", h.GetTokenURI)
	r.Get("/accounts/{account}", h.ListByOwner)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/mint", h.Mint)
		r.Post("/transfer", h.Transfer)
		r.Put("/config/base-uri", h.SetBaseURI)
		r.Put("/config/transfer-fee", h.SetTransferFee)
		r.Post("/pause", h.Pause)
		r.Post("/unpause", h.Unpause)
	})

	return r
}

func parcelID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, core.InvalidInputError("invalid parcel id")
	}
	return id, nil
}

func (h *Handler) GetParcel(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	uri, err := h.service.TokenURI(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toParcelResponse(p, uri))
}

func (h *Handler) GetOwner(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	owner, err := h.service.OwnerOf(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, OwnerResponse{ParcelID: id, Owner: owner.Hex()})
}

func (h *Handler) GetTokenURI(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	uri, err := h.service.TokenURI(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, TokenURIResponse{ParcelID: id, TokenURI: uri})
}

func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !common.IsHexAddress(account) {
		core.BadRequest(w, "invalid account address")
		return
	}

	parcels, err := h.service.ListByOwner(r.Context(), common.HexToAddress(account))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	out := make([]ParcelResponse, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, toParcelResponse(p, ""))
	}
	core.OK(w, out)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Config(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, toConfigResponse(cfg))
}

func (h *Handler) Mint(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	count := req.Amount
	if count == 0 {
		count = 1
	}

	ids, err := h.service.MintBatch(
		r.Context(), sender, common.HexToAddress(req.To), req.ResidenceType, count,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, MintResponse{ParcelIDs: ids})
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	payment, err := parsePayment(req.Payment)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	err = h.service.Transfer(
		r.Context(), sender, common.HexToAddress(req.To), req.ParcelID, payment,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetBaseURI(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetBaseURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.SetBaseURI(r.Context(), sender, req.BaseURI); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetTransferFee(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req SetTransferFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	fee, err := core.ParseAmount(req.Fee)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.SetTransferFee(r.Context(), sender, fee); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}
	if err := h.service.Pause(r.Context(), sender); err != nil {
		core.JSONError(w, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) Unpause(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}
	if err := h.service.Unpause(r.Context(), sender); err != nil {
		core.JSONError(w, err)
		return
	}
	core.NoContent(w)
}
