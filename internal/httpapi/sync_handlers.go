package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"jobradar-engine/internal/ingest"
	"jobradar-engine/internal/scheduler"
)

type SyncHandler struct {
	Coord *ingest.Coordinator
	Sched *scheduler.Scheduler
}

// Status reports the scheduler state.
func (h SyncHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Sched.GetStatus())
}

// Run triggers one sync cycle immediately. A cycle already in flight is
// reported as a conflict, not queued.
func (h SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("source"); name != "" {
		created, err := h.Coord.SyncOne(r.Context(), name)
		if err != nil {
			var srcErr *ingest.SourceError
			if errors.As(err, &srcErr) {
				writeError(w, http.StatusBadGateway, err.Error())
				return
			}
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, map[string]int{"created": created})
		return
	}

	sum, err := h.Sched.TriggerSync(r.Context())
	if errors.Is(err, scheduler.ErrSyncInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, sum)
}

// Cleanup retires postings unseen for the given number of days.
func (h SyncHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	daysOld := 30
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		daysOld = n
	}

	n, err := h.Coord.CleanupInactive(r.Context(), daysOld)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]int64{"retired": n})
}
