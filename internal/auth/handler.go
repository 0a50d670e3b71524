// Landgrid | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type TokenRequest struct {
	Account string `json:"account" validate:"required,eth_addr"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Account     string `json:"account"`
}

// Handler issues access tokens. Production deployments are expected to
// front this with a real identity provider or signature challenge; the
// dev issuer mints a token for any requested account so local flows and
// integration tests can act as arbitrary callers.
type Handler struct {
	manager  *JWTManager
	validate *validator.Validate
	devMode  bool
}

func NewHandler(manager *JWTManager, validate *validator.Validate, devMode bool) *Handler {
	return &Handler{manager: manager, validate: validate, devMode: devMode}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.devMode {
		r.Post("/token", h.IssueToken)
	}
	return r
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	account := common.HexToAddress(req.Account)
	token, err := h.manager.CreateAccessToken(account)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Account:     account.Hex(),
	})
}
