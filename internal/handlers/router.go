package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/stage"
)

// NewRouter registers every endpoint on a new mux. store may be nil.
func NewRouter(stages *Stages, store storage.StateStore, generator stage.Generator, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/health", NewHealthHandler(store, generator, logger))
	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/v1/turns/before", NewTurnHandler(PhaseBefore, stages, store, logger))
	mux.Handle("/v1/turns/after", NewTurnHandler(PhaseAfter, stages, store, logger))
	mux.Handle("/v1/state", NewStateHandler(stages, store, logger))

	return mux
}
