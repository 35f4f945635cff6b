package codes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

// MemoryStore keeps codes in process memory. Entries are evicted once the
// retention window passes, which must be longer than the code TTL so that
// expired codes can still be reported as expired.
type MemoryStore struct {
	cache     *ttlcache.Cache
	retention time.Duration
}

func NewMemoryStore(retention time.Duration) *MemoryStore {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryStore{
		cache:     c,
		retention: retention,
	}
}

func (m *MemoryStore) Put(_ context.Context, ns Namespace, e Entry) error {
	return m.cache.SetWithTTL(ns.Key(), e, m.retention)
}

func (m *MemoryStore) Get(_ context.Context, ns Namespace) (*Entry, error) {
	v, err := m.cache.Get(ns.Key())
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	e, ok := v.(Entry)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value %T", v)
	}

	return &e, nil
}

func (m *MemoryStore) Delete(_ context.Context, ns Namespace) error {
	err := m.cache.Remove(ns.Key())
	if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return err
	}

	return nil
}

func (m *MemoryStore) Close() error {
	return m.cache.Close()
}
