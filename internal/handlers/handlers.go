package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitactivity/internal/apierr"
	"gitactivity/internal/logger"
	"gitactivity/internal/models"
	"gitactivity/internal/service"
)

const cacheControl = "s-maxage=15, stale-while-revalidate=30"

// Pinger reports archive health. Nil when the archive is disabled.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc     *service.Service
	archive Pinger
}

func New(s *service.Service, archive Pinger) *Handler {
	return &Handler{svc: s, archive: archive}
}

func respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Errorf(err, "respond: failed to encode response")
		}
	}
}

// Routes mounts the dashboard API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/git-activity", func(r chi.Router) {
		r.Get("/", h.Activity)
		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListActivity(r.Context())
	if err != nil {
		logger.Logger.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Bool("upstream", service.IsUpstreamError(err)).
			Msg("Activity: error fetching git activity")
		apierr.Write(w, apierr.ErrActivityFetch)
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	respond(w, http.StatusOK, models.ActivityResponse{
		Data:      records,
		Total:     len(records),
		Timestamp: models.FormatTimestamp(h.svc.Now()),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		logger.Logger.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Stats: error fetching git stats")
		apierr.Write(w, apierr.ErrStatsFetch)
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	respond(w, http.StatusOK, models.StatsResponse{
		Data:      *stats,
		Timestamp: models.FormatTimestamp(h.svc.Now()),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	archive := "disabled"
	if h.archive != nil {
		archive = "ok"
		if err := h.archive.Ping(r.Context()); err != nil {
			logger.Errorf(err, "Health: archive ping failed")
			archive = "down"
		}
	}

	respond(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"archive": archive,
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	apierr.Write(w, apierr.ErrNotFound)
}
