// Landgrid | 2026
// handler.go

package ledger

import (
	"net/http"
	"strconv"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	journal *Journal
}

func NewHandler(journal *Journal) *Handler {
	return &Handler{journal: journal}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List serves the committed journal. Consumers page with ?after=<seq>
// and may narrow with ?kind=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	after, _ := strconv.ParseUint(r.URL.Query().Get("after"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	kind := r.URL.Query().Get("kind")

	var (
		events []Event
		err    error
	)
	if kind != "" {
		events, err = h.journal.ListByKind(r.Context(), kind, after, limit)
	} else {
		events, err = h.journal.List(r.Context(), after, limit)
	}
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, events)
}
