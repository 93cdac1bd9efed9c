package redis

import (
	"context"
	"encoding/json"
	"testing"

	"compat-quiz-service/internal/telemetry"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestEventStreamAppendsEvents(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)
	stream := NewEventStream(client, "quiz:events:test", 0, nil)

	stream.Track(ctx, telemetry.EventQuizStarted, map[string]any{"quiz_id": "quiz-1"})
	stream.Track(ctx, telemetry.EventQuizCompleted, map[string]any{"score": 91})

	entries, err := client.XRange(ctx, "quiz:events:test", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 events, got %d", len(entries))
	}
	if entries[1].Values["event"] != telemetry.EventQuizCompleted {
		t.Fatalf("unexpected event %v", entries[1].Values)
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(entries[1].Values["props"].(string)), &props); err != nil {
		t.Fatalf("decode props: %v", err)
	}
	if props["score"] != float64(91) || props["timestamp"] == nil {
		t.Fatalf("unexpected props %v", props)
	}
}

func TestEventStreamIgnoresWriteFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	// must not panic or block once redis is gone
	NewEventStream(client, "", 10, nil).Track(context.Background(), telemetry.EventRetake, nil)
}
