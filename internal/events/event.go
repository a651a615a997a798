// Package events ships auth activity events to external sinks. Emission is
// best-effort: sinks log and swallow their own errors so the request path
// never blocks on an export.
package events

import (
	"context"
	"time"
)

// Event is a single auth activity record (sign-up completed, sign-in,
// reconciliation, logout).
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Metadata  string    `json:"metadata,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Emitter sends events to a sink.
type Emitter interface {
	Emit(ctx context.Context, event *Event) error
}

type multiEmitter []Emitter

// Multi fans each event out to every non-nil emitter. The first error is
// returned after all emitters have been tried.
func Multi(emitters ...Emitter) Emitter {
	var active multiEmitter
	for _, e := range emitters {
		if e != nil {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return active
}

func (m multiEmitter) Emit(ctx context.Context, event *Event) error {
	var firstErr error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
