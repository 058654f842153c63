package server

import (
	"context"
	"log/slog"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/activitymap"
)

// auditSink logs every authentication lifecycle event as a normalized
// activity record
func auditSink(logger *slog.Logger) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		rec := activitymap.Normalize(event)

		attrs := []any{
			"verb", rec.Verb,
			"actor_id", rec.ActorID,
			"channel", rec.Channel,
			"occurred_at", rec.OccurredAt,
		}
		if rec.ObjectID != "" {
			attrs = append(attrs, "object_type", rec.ObjectType, "object_id", rec.ObjectID)
		}
		if len(rec.Metadata) > 0 {
			attrs = append(attrs, "metadata", rec.Metadata)
		}
		logger.InfoContext(ctx, "auth activity", attrs...)
		return nil
	})
}
