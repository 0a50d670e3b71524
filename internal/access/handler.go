// Landgrid | 2026
// handler.go

package access

import (
	"context"
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

// Routes returns the role management router. Reads are open; writes
// require an authenticated caller and are mounted behind the auth
// middleware by the server.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{role}/admin", h.GetAdmin)
	r.Get("/{role}/members", h.ListMembers)
	r.Get("/{role}/members/{account}", h.HasRole)
	r.Get("/accounts/{account}", h.RolesOf)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/grant", h.Grant)
		r.Post("/revoke", h.Revoke)
		r.Post("/renounce", h.Renounce)
		r.Post("/admin", h.ReassignAdmin)
	})

	return r
}

func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	role, err := ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	admin, err := h.service.GetRoleAdmin(r.Context(), role)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, RoleResponse{Role: admin.Hex(), Name: RoleName(admin)})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	role, err := ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	members, err := h.service.Members(r.Context(), role)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toMemberResponses(members))
}

func (h *Handler) HasRole(w http.ResponseWriter, r *http.Request) {
	role, err := ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	account := chi.URLParam(r, "account")
	if !common.IsHexAddress(account) {
		core.BadRequest(w, "invalid account address")
		return
	}

	has, err := h.service.HasRole(r.Context(), role, common.HexToAddress(account))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, HasRoleResponse{
		Role:    role.Hex(),
		Account: common.HexToAddress(account).Hex(),
		HasRole: has,
	})
}

func (h *Handler) RolesOf(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !common.IsHexAddress(account) {
		core.BadRequest(w, "invalid account address")
		return
	}

	members, err := h.service.RolesOf(r.Context(), common.HexToAddress(account))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toMemberResponses(members))
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.service.GrantRole)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.service.RevokeRole)
}

func (h *Handler) Renounce(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.service.RenounceRole)
}

func (h *Handler) ReassignAdmin(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req ReassignAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		core.JSONError(w, err)
		return
	}
	newAdmin, err := ParseRole(req.NewAdmin)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.ReassignRoleAdmin(r.Context(), sender, role, newAdmin); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

type roleChangeFn func(ctx context.Context, sender common.Address, role common.Hash, account common.Address) error

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request, fn roleChangeFn) {
	sender, ok := middleware.GetAccount(r.Context())
	if !ok {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	var req RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := fn(r.Context(), sender, role, common.HexToAddress(req.Account)); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
