// Landgrid | 2026
// handler.go

package token

import (
	"encoding/json"
	"net/http"

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

	r.Get("/supply", h.TotalSupply)
	r.Get("/balances/{account}", h.BalanceOf)
	r.Get("/allowances/{owner}/{spender}", h.Allowance)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/transfer", h.Transfer)
		r.Post("/approve", h.Approve)
		r.Post("/transfer-from", h.TransferFrom)
		r.Post("/mint", h.Mint)
	})

	return r
}

func (h *Handler) TotalSupply(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSupply(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, SupplyResponse{TotalSupply: total.String()})
}

func (h *Handler) BalanceOf(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !common.IsHexAddress(account) {
		core.BadRequest(w, "invalid account address")
		return
	}

	balance, err := h.service.BalanceOf(r.Context(), common.HexToAddress(account))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, BalanceResponse{
		Account: common.HexToAddress(account).Hex(),
		Balance: balance.String(),
	})
}

func (h *Handler) Allowance(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	spender := chi.URLParam(r, "spender")
	if !common.IsHexAddress(owner) || !common.IsHexAddress(spender) {
		core.BadRequest(w, "invalid account address")
		return
	}

	allowance, err := h.service.Allowance(
		r.Context(), common.HexToAddress(owner), common.HexToAddress(spender),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, AllowanceResponse{
		Owner:     common.HexToAddress(owner).Hex(),
		Spender:   common.HexToAddress(spender).Hex(),
		Allowance: allowance.String(),
	})
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

	value, err := core.ParseAmount(req.Value)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Transfer(r.Context(), sender, common.HexToAddress(req.To), value); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	value, err := core.ParseAmount(req.Value)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Approve(r.Context(), sender, common.HexToAddress(req.Spender), value); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) TransferFrom(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req TransferFromRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	value, err := core.ParseAmount(req.Value)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	err = h.service.TransferFrom(
		r.Context(), sender,
		common.HexToAddress(req.From), common.HexToAddress(req.To), value,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
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

	value, err := core.ParseAmount(req.Value)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Mint(r.Context(), sender, common.HexToAddress(req.To), value); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
