package events

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// NewOTelEmitter returns an Emitter that sends events as OTel log records via
// the given LoggerProvider. A nil provider yields a nil Emitter.
func NewOTelEmitter(provider *sdklog.LoggerProvider) Emitter {
	if provider == nil {
		return nil
	}
	return &otelEmitter{logger: provider.Logger("community-platform.events")}
}

type otelEmitter struct {
	logger otellog.Logger
}

func (e *otelEmitter) Emit(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(event.Action))
	if event.ID != "" {
		rec.AddAttributes(otellog.String("event_id", event.ID))
	}
	if event.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", event.UserID))
	}
	if event.Resource != "" {
		rec.AddAttributes(otellog.String("resource", event.Resource))
	}
	if event.Metadata != "" {
		rec.AddAttributes(otellog.String("metadata", event.Metadata))
	}
	if event.IPAddress != "" {
		rec.AddAttributes(otellog.String("ip_address", event.IPAddress))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
