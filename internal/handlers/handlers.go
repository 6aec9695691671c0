package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"procurement/internal/broker"
	"procurement/internal/cache"
	"procurement/internal/util"
)

// Handler wraps the storage and the optional event/cache backends. Events
// and Cache may be nil (tests, degraded startup); every use is guarded.
type Handler struct {
	Store  StorageInterface
	Events *broker.EventPublisher
	Cache  *cache.Cache

	logger *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(store StorageInterface, events *broker.EventPublisher, c *cache.Cache) *Handler {
	return &Handler{
		Store:  store,
		Events: events,
		Cache:  c,
		logger: util.GetLogger(),
	}
}

// PingHandler answers "ok" for liveness probes
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams parses page and limit from query, with defaults and caps
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 20, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			params.Limit = l
		}
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 1 {
			params.Offset = (p - 1) * params.Limit
		}
	}
	return params
}

// parseIDParam parses a positive int64 path parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseUserIDQuery reads the acting user's id from the userId query
// parameter. Caller identity is always explicit, never ambient.
func parseUserIDQuery(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("missing or invalid userId")
	}
	return id, nil
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		status := strconv.Itoa(ww.Status())

		util.HTTPRequestDuration.WithLabelValues(r.Method, pattern, status).
			Observe(time.Since(start).Seconds())
		util.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
	})
}
