package schemacache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/db"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

type mockSource struct {
	schema      facet.Schema
	infos       []facet.Info
	err         error
	fieldCalls  int
	filterCalls int
}

func (m *mockSource) SearchFields(_ context.Context) (facet.Schema, error) {
	m.fieldCalls++
	return m.schema, m.err
}

func (m *mockSource) Filters(_ context.Context) ([]facet.Info, error) {
	m.filterCalls++
	return m.infos, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestSource(t *testing.T, inner *mockSource) (*CachedSource, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, "facetdex:", time.Minute, nil, zap.NewNop()), ms
}
