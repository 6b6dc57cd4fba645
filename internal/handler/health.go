package handler

import (
	"context"
	"net/http"
	"time"

	"dockergen/internal/httputil"
)

// Pinger checks a backing store. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and the artifact store in use
type HealthHandler struct {
	storage  string
	db       Pinger
	sessions func() int
}

// NewHealthHandler creates a health handler. db may be nil for in-memory storage.
func NewHealthHandler(storage string, db Pinger, sessions func() int) *HealthHandler {
	return &HealthHandler{storage: storage, db: db, sessions: sessions}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
}

// Check returns 200 when the service can serve requests
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: h.storage}
	if h.sessions != nil {
		resp.Sessions = h.sessions()
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			httputil.RespondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
