package report

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/named-data/lfq/std/log"
)

// Handler serves the report history as JSON.
type Handler struct {
	store Store
	limit int
}

// NewHandler serves store, returning at most limit reports unless the
// request asks for another limit.
func NewHandler(store Store, limit int) *Handler {
	return &Handler{store: store, limit: limit}
}

func (h *Handler) String() string {
	return "report-handler"
}

func (h *Handler) Register(mux *chi.Mux) {
	mux.Get("/reports", h.handleList)
	mux.Get("/reports/{kind}", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := h.limit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := h.store.List(chi.URLParam(r, "kind"), limit)
	if err != nil {
		log.Error(h, "Unable to list reports", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		log.Warn(h, "Unable to write response", "err", err)
	}
}
