// Package admin serves the operational HTTP surface: liveness, readiness,
// queue depth and Prometheus metrics.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimflow/internal/message/models"
	"claimflow/pkg/platform/httputil"
)

const (
	statusOK       = "ok"
	statusDegraded = "unavailable"
	checkTimeout   = 2 * time.Second
)

// Check verifies one dependency is reachable.
type Check func(ctx context.Context) error

// MessageCounter reports queue depth.
type MessageCounter interface {
	CountByType(ctx context.Context) (map[models.MessageType]int, error)
}

type Handler struct {
	logger   *slog.Logger
	checks   map[string]Check
	messages MessageCounter
}

func New(logger *slog.Logger, messages MessageCounter, checks map[string]Check) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, checks: checks, messages: messages}
}

// Router builds the admin routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Get("/messages/pending", h.handlePendingMessages)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadinessResponse{Status: statusOK, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed",
				slog.String("check", name),
				slog.Any("error", err),
			)
			resp.Status = statusDegraded
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = statusOK
	}

	status := http.StatusOK
	if resp.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) handlePendingMessages(w http.ResponseWriter, r *http.Request) {
	counts, err := h.messages.CountByType(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to count pending messages", slog.Any("error", err))
		httputil.WriteError(w, err)
		return
	}
	resp := PendingMessagesResponse{Pending: make(map[string]int, len(models.MessageTypes))}
	for _, t := range models.MessageTypes {
		resp.Pending[string(t)] = counts[t]
		resp.Total += counts[t]
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
