package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func (m *memoryStore) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	store := newMemoryStore()
	logger := logrus.New()
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	value, hit, err := GetOrCompute(context.Background(), store, logger, "answer", time.Minute, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, value)

	value, hit, err = GetOrCompute(context.Background(), store, logger, "answer", time.Minute, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_StoreErrorActsAsMiss(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	logger := logrus.New()

	value, hit, err := GetOrCompute(context.Background(), store, logger, "k", time.Minute, func(context.Context) (string, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "computed", value)
}

func TestGetOrCompute_WriteFailureIsSwallowed(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errors.New("store full")
	logger := logrus.New()

	value, _, err := GetOrCompute(context.Background(), store, logger, "k", time.Minute, func(context.Context) (string, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
}

func TestGetOrCompute_ComputeErrorPropagates(t *testing.T) {
	store := newMemoryStore()
	logger := logrus.New()
	wantErr := errors.New("provider down")

	_, _, err := GetOrCompute(context.Background(), store, logger, "k", time.Minute, func(context.Context) (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestGetOrCompute_NilStoreComputesEveryTime(t *testing.T) {
	logger := logrus.New()
	calls := 0

	for i := 0; i < 3; i++ {
		_, hit, err := GetOrCompute(context.Background(), nil, logger, "k", time.Minute, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 3, calls)
}

func TestDeleteByPattern(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "activity:u1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "activity:u2", []byte("b"), time.Minute))
	require.NoError(t, store.Set(ctx, "feed:u1", []byte("c"), time.Minute))

	require.NoError(t, store.DeleteByPattern(ctx, "activity:*"))

	_, err := store.Get(ctx, "activity:u1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "feed:u1")
	assert.NoError(t, err)
}
