// Package telemetry carries named quiz events to optional analytics sinks.
// A missing or failing sink never changes quiz behavior.
package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	EventQuizStarted      = "quiz_started"
	EventNameSubmitted    = "quiz_name_submitted"
	EventQuestionAnswered = "quiz_question_answered"
	EventQuestionBack     = "quiz_question_back"
	EventQuizAbandoned    = "quiz_abandoned"
	EventQuizCompleted    = "quiz_completed"
	EventRetake           = "quiz_retake_clicked"
	EventCTAClicked       = "cta_clicked"
)

// Tracker receives named events with structured properties.
type Tracker interface {
	Track(ctx context.Context, event string, props map[string]any)
}

// Nop discards events.
type Nop struct{}

func (Nop) Track(context.Context, string, map[string]any) {}

// Multi fans an event out to several trackers.
type Multi []Tracker

func (m Multi) Track(ctx context.Context, event string, props map[string]any) {
	for _, t := range m {
		t.Track(ctx, event, props)
	}
}

// LogTracker writes events to a zap logger.
type LogTracker struct {
	log *zap.Logger
	now func() time.Time
}

func NewLogTracker(log *zap.Logger) *LogTracker {
	return &LogTracker{log: log, now: time.Now}
}

func (t *LogTracker) Track(_ context.Context, event string, props map[string]any) {
	props = WithTimestamp(props, t.now())
	fields := make([]zap.Field, 0, len(props)+1)
	fields = append(fields, zap.String("event", event))
	for k, v := range props {
		fields = append(fields, zap.Any(k, v))
	}
	t.log.Info("telemetry", fields...)
}

// WithTimestamp returns a copy of props carrying an RFC 3339 timestamp.
func WithTimestamp(props map[string]any, at time.Time) map[string]any {
	out := make(map[string]any, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out["timestamp"] = at.UTC().Format(time.RFC3339Nano)
	return out
}
