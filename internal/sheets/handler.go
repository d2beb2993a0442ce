package sheets

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/gorilla/mux"
)

// Handler exposes the raw spreadsheet view for debugging imports.
type Handler struct {
	source   *Source
	location *time.Location
}

func NewHandler(source *Source, loc *time.Location) *Handler {
	return &Handler{source: source, location: loc}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sheets/submissions", h.Submissions).Methods("GET")
	router.HandleFunc("/api/sheets/rows", h.Rows).Methods("GET")
	router.HandleFunc("/api/sheets/prices", h.Prices).Methods("GET")
}

func (h *Handler) Submissions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.Submissions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, rows)
}

// Rows returns the expanded item rows plus the reported revenue for the
// range given by the start and end query parameters.
func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rng, err := domain.ParseDateRange(query.Get("start"), query.Get("end"), h.location)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.source.FetchRows(r.Context(), rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	reported, err := h.source.FetchReportedRevenue(r.Context(), rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{
		"range":            rng.String(),
		"rows":             rows,
		"reported_revenue": reported,
	})
}

func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	book, err := h.source.Prices(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, pricebook.Defaults().Merge(book))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
