package redis

import (
	"context"
	"encoding/json"
	"time"

	"compat-quiz-service/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventStream appends telemetry events to a capped Redis stream for downstream analytics.
// Write failures are logged and otherwise ignored.
type EventStream struct {
	client *redis.Client
	stream string
	maxLen int64
	log    *zap.Logger
	now    func() time.Time
}

func NewEventStream(client *redis.Client, stream string, maxLen int64, log *zap.Logger) *EventStream {
	if stream == "" {
		stream = "quiz:events"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventStream{client: client, stream: stream, maxLen: maxLen, log: log, now: time.Now}
}

func (e *EventStream) Track(ctx context.Context, event string, props map[string]any) {
	raw, err := json.Marshal(telemetry.WithTimestamp(props, e.now()))
	if err != nil {
		e.log.Warn("encode telemetry event", zap.String("event", event), zap.Error(err))
		return
	}
	args := &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]interface{}{"event": event, "props": string(raw)},
	}
	if e.maxLen > 0 {
		args.MaxLen = e.maxLen
		args.Approx = true
	}
	if err := e.client.XAdd(ctx, args).Err(); err != nil {
		e.log.Warn("append telemetry event", zap.String("event", event), zap.Error(err))
	}
}
