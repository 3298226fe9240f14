package httpapi

import (
	"net/http"
	"strconv"

	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/store"
)

type JobsHandler struct {
	Store *store.Store
}

// List returns active postings, most recently synced first.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	jobs, err := h.Store.ListActivePostings(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if jobs == nil {
		jobs = []domain.Posting{}
	}
	writeJSON(w, jobs)
}

// Sources returns all known listing sources and their last sync times.
func (h JobsHandler) Sources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.Store.ListSources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []domain.JobSource{}
	}
	writeJSON(w, sources)
}
