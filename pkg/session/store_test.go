package session

import (
	"context"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeBlobStore) Get(_ context.Context, key string) (string, error) {
	raw, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return raw, nil
}

func (f *fakeBlobStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBlobStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeBlobStore) SessionBlobKey(sessionID, name string) string {
	return strings.Join([]string{"sk", "session", sessionID, name}, ":")
}

func TestStore_RoundTrip(t *testing.T) {
	backing := newFakeBlobStore()
	store, err := NewStore(backing, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	payload := map[string]int{"a": 1, "b": 2}
	require.NoError(t, store.Set(ctx, "sess-1", KeyCart, payload))

	var got map[string]int
	require.NoError(t, store.Get(ctx, "sess-1", KeyCart, &got))
	assert.Equal(t, payload, got)
	assert.Equal(t, time.Hour, backing.ttls["sk:session:sess-1:cart"])
}

func TestStore_GetMissingReturnsErrNotFound(t *testing.T) {
	store, err := NewStore(newFakeBlobStore(), time.Hour)
	require.NoError(t, err)

	var dest map[string]int
	err = store.Get(context.Background(), "sess-1", KeyBuyNow, &dest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteThenGet(t *testing.T) {
	store, err := NewStore(newFakeBlobStore(), time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "sess-1", KeySignupPending, "pending"))
	require.NoError(t, store.Delete(ctx, "sess-1", KeySignupPending))

	var dest string
	assert.ErrorIs(t, store.Get(ctx, "sess-1", KeySignupPending, &dest), ErrNotFound)
}

func TestStore_SetWithTTLOverridesDefault(t *testing.T) {
	backing := newFakeBlobStore()
	store, err := NewStore(backing, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.SetWithTTL(context.Background(), "sess-1", KeySignupPending, "blob", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, backing.ttls["sk:session:sess-1:signup_pending"])
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil backing store")
	}
	if _, err := NewStore(newFakeBlobStore(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
