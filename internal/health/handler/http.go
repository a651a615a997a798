// Package handler serves readiness for Kubernetes, load balancers, and CI.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger reports backing-store reachability (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers health checks, optionally pinging the database.
type Handler struct {
	db Pinger
}

// New returns a health Handler. db may be nil; then readiness skips the DB ping.
func New(db Pinger) *Handler {
	return &Handler{db: db}
}

type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Check reports 200 when the service and its database are reachable,
// 503 otherwise.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Detail: "database unreachable"})
			return
		}
	}
	writeHealth(w, http.StatusOK, healthResponse{Status: "ok"})
}

func writeHealth(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
