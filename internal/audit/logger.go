// Package audit records auth events for later review. Logging is best-effort:
// failures never affect the calling flow.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"community-platform/backend/internal/audit/domain"
	auditrepo "community-platform/backend/internal/audit/repository"
	"community-platform/backend/internal/events"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Logger persists audit events through the repository with an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	emitter     events.Emitter
}

// NewLogger returns a Logger that persists to repo and uses ipExtractor for
// client IP. ipExtractor may be nil; then IP is recorded as "unknown".
// emitter may be nil; then events are only persisted.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, emitter events.Emitter) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, emitter: emitter}
}

// Recent returns the newest audit entries, paginated by limit and offset.
func (l *Logger) Recent(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	return l.repo.ListRecent(ctx, limit, offset)
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if got := l.ipExtractor(ctx); got != "" {
			ip = got
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
	events.EmitAsync(l.emitter, &events.Event{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Resource:  entry.Resource,
		Metadata:  entry.Metadata,
		IPAddress: entry.IP,
		CreatedAt: entry.CreatedAt,
	})
}
