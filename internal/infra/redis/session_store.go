package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"compat-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-backed implementation of app.SessionRepository.
// Each session is a JSON blob under quiz:session:{id}; every save refreshes the TTL,
// so abandoned sessions disappear on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if session.State.Answers == nil {
		session.State.Answers = domain.Answers{}
	}
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.key(session.ID), raw, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
