package httpapi

import (
	"go.uber.org/zap"

	"jobradar-engine/internal/events"
	"jobradar-engine/internal/ingest"
	"jobradar-engine/internal/match"
	"jobradar-engine/internal/scheduler"
	"jobradar-engine/internal/store"
)

// Deps carries everything the HTTP layer needs. The HTTP layer is glue: it
// adapts the engine's surface to a transport and adds nothing of its own.
type Deps struct {
	Store   *store.Store
	Coord   *ingest.Coordinator
	Sched   *scheduler.Scheduler
	Matcher *match.Engine
	Hub     *events.Hub
	Log     *zap.Logger
}
