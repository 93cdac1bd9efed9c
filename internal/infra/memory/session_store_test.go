package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"compat-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	session := domain.Session{ID: "s1", QuizID: "quiz-1", State: domain.State{Answers: domain.Answers{0: {1}}}}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.QuizID != "quiz-1" || !got.State.Answers.Has(0, 1) {
		t.Fatalf("unexpected session %+v", got)
	}

	// mutating the returned copy must not leak into the store
	got.State.Answers[0][0] = 3
	again, _ := store.Get(ctx, "s1")
	if !again.State.Answers.Has(0, 1) {
		t.Fatalf("store shares answers with callers")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.clock = func() time.Time { return now }

	_ = store.Save(ctx, domain.Session{ID: "s1"})
	now = now.Add(2 * time.Minute)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session evicted")
	}
}
