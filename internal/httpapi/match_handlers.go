package httpapi

import (
	"net/http"
	"strconv"

	"jobradar-engine/internal/match"
)

type MatchHandler struct {
	Matcher *match.Engine
}

// List returns ranked matches for a user. A user without a profile gets an
// empty list.
func (h MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := h.Matcher.FindMatches(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, results)
}
