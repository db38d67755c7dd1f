package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SupplierCache is a read-through cache in front of SupplierByID. The store
// stays the single source of truth: entries expire after a short TTL and
// writes invalidate, so a stale entry can only survive for one TTL window
// even with multiple instances running.
type SupplierCache struct {
	store *Store
	ttl   time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]cachedSupplier
}

type cachedSupplier struct {
	supplier Supplier
	expires  time.Time
}

func NewSupplierCache(store *Store, ttl time.Duration) *SupplierCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SupplierCache{
		store:   store,
		ttl:     ttl,
		entries: map[uuid.UUID]cachedSupplier{},
	}
}

func (c *SupplierCache) SupplierByID(ctx context.Context, workspaceID, supplierID uuid.UUID) (Supplier, error) {
	now := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[supplierID]
	c.mu.Unlock()
	if ok && entry.expires.After(now) && entry.supplier.WorkspaceID == workspaceID {
		return entry.supplier, nil
	}

	sp, err := c.store.SupplierByID(ctx, workspaceID, supplierID)
	if err != nil {
		return Supplier{}, err
	}

	c.mu.Lock()
	c.entries[supplierID] = cachedSupplier{supplier: sp, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return sp, nil
}

func (c *SupplierCache) Invalidate(supplierID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, supplierID)
	c.mu.Unlock()
}
