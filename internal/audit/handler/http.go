// Package handler exposes the audit log for operator review.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"community-platform/backend/internal/audit"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler serves the audit review endpoint.
type Handler struct {
	logger *audit.Logger
}

// New returns a Handler reading through the given audit logger.
func New(logger *audit.Logger) *Handler {
	return &Handler{logger: logger}
}

type entryResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	IP        string `json:"ip"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Recent serves the newest audit entries. limit defaults to 50 and is capped
// at 200; offset defaults to 0.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := queryInt32(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.logger.Recent(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
