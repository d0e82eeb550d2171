package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akashgupta/shopkart-backend/pkg/redis"
)

// Blob names stored per session.
const (
	KeyCart          = "cart"
	KeyBuyNow        = "buy_now"
	KeySignupPending = "signup_pending"
)

// ErrNotFound is returned when the session has no value under the
// requested name. Callers treat it as absence, not failure.
var ErrNotFound = errors.New("session: value not found")

type blobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionBlobKey(sessionID, name string) string
}

// Store persists JSON blobs keyed by (session id, name) with a shared
// TTL. Every write refreshes the blob's expiry.
type Store struct {
	store blobStore
	ttl   time.Duration
}

func NewStore(store blobStore, ttl time.Duration) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("session store requires a backing store")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session store requires a positive ttl")
	}
	return &Store{store: store, ttl: ttl}, nil
}

// Get decodes the blob stored under (sessionID, name) into dest.
func (s *Store) Get(ctx context.Context, sessionID, name string, dest any) error {
	raw, err := s.store.Get(ctx, s.store.SessionBlobKey(sessionID, name))
	if err != nil {
		if redis.IsNil(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading session blob %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decoding session blob %q: %w", name, err)
	}
	return nil
}

// Set encodes value as JSON and stores it under (sessionID, name).
func (s *Store) Set(ctx context.Context, sessionID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding session blob %q: %w", name, err)
	}
	if err := s.store.Set(ctx, s.store.SessionBlobKey(sessionID, name), string(raw), s.ttl); err != nil {
		return fmt.Errorf("writing session blob %q: %w", name, err)
	}
	return nil
}

// SetWithTTL stores value under (sessionID, name) with an explicit TTL,
// used for short-lived blobs like pending signups.
func (s *Store) SetWithTTL(ctx context.Context, sessionID, name string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding session blob %q: %w", name, err)
	}
	if err := s.store.Set(ctx, s.store.SessionBlobKey(sessionID, name), string(raw), ttl); err != nil {
		return fmt.Errorf("writing session blob %q: %w", name, err)
	}
	return nil
}

// Delete removes the blob stored under (sessionID, name).
func (s *Store) Delete(ctx context.Context, sessionID, name string) error {
	if err := s.store.Del(ctx, s.store.SessionBlobKey(sessionID, name)); err != nil {
		return fmt.Errorf("deleting session blob %q: %w", name, err)
	}
	return nil
}
