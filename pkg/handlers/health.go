package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/config"
	"github.com/softdesk/softdesk-api/pkg/database"
)

// healthCheckTimeout bounds the database probe so a wedged pool cannot
// hang the readiness endpoint.
const healthCheckTimeout = 2 * time.Second

// HealthResponse reports readiness: overall status plus the state of the
// database the API cannot serve without.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// AboutResponse identifies the running service.
type AboutResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// HealthHandler serves the unauthenticated status endpoints.
type HealthHandler struct {
	cfg       *config.Config
	db        *database.DB
	logger    *zap.Logger
	startedAt time.Time
}

// NewHealthHandler creates a health handler. A nil db skips the database
// probe, which keeps the endpoint usable in tests without a pool.
func NewHealthHandler(cfg *config.Config, db *database.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, logger: logger, startedAt: time.Now()}
}

// RegisterRoutes registers the status routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Health handles GET /health. Reports 503 when the database is unreachable
// so orchestrators stop routing traffic here.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok", Database: "up"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed to reach database", zap.Error(err))
			response = HealthResponse{Status: "degraded", Database: "down"}
			status = http.StatusServiceUnavailable
		}
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping. Identifies the build and how long it has been up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := AboutResponse{
		Service:     "softdesk-api",
		Version:     h.cfg.Version,
		Environment: h.cfg.Env,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
