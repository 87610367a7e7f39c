package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"convohub/domain"
	"convohub/repositories"

	"github.com/google/uuid"
)

// CachedMembershipIndex decorates a membership index with bounded-stale
// reads. Entries are point-in-time snapshots that simply expire after
// the TTL; there is no invalidation push from the account subsystem.
// A stale answer can transiently hide or show a conversation in one
// tenant's listing, which the engine tolerates, and never discloses
// conversation content.
type CachedMembershipIndex struct {
	inner repositories.IMembershipIndex
	ttl   time.Duration
	log   *slog.Logger

	mu      sync.RWMutex
	tenants map[uuid.UUID]tenantsEntry
	members map[memberKey]memberEntry
}

type tenantsEntry struct {
	tenants   []domain.TenantID
	fetchedAt time.Time
}

type memberKey struct {
	userID   uuid.UUID
	tenantID domain.TenantID
}

type memberEntry struct {
	isMember  bool
	fetchedAt time.Time
}

func NewCachedMembershipIndex(inner repositories.IMembershipIndex, ttl time.Duration, log *slog.Logger) *CachedMembershipIndex {
	return &CachedMembershipIndex{
		inner:   inner,
		ttl:     ttl,
		log:     log,
		tenants: make(map[uuid.UUID]tenantsEntry),
		members: make(map[memberKey]memberEntry),
	}
}

// MembersOf serves fresh entries from the cache and resolves all
// unknown ids in one pass-through call, preserving the single-round-trip
// property for the ids actually queried.
func (c *CachedMembershipIndex) MembersOf(ctx context.Context, tenantID domain.TenantID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	now := time.Now()
	var members, unknown []uuid.UUID

	c.mu.RLock()
	for _, id := range userIDs {
		entry, ok := c.members[memberKey{userID: id, tenantID: tenantID}]
		switch {
		case !ok || now.Sub(entry.fetchedAt) > c.ttl:
			unknown = append(unknown, id)
		case entry.isMember:
			members = append(members, id)
		}
	}
	c.mu.RUnlock()

	if len(unknown) == 0 {
		return members, nil
	}

	c.log.Debug("Membership cache pass-through", "tenant", tenantID, "unknown", len(unknown))
	fetched, err := c.inner.MembersOf(ctx, tenantID, unknown)
	if err != nil {
		return nil, err
	}

	isMember := make(map[uuid.UUID]bool, len(fetched))
	for _, id := range fetched {
		isMember[id] = true
	}

	c.mu.Lock()
	for _, id := range unknown {
		c.members[memberKey{userID: id, tenantID: tenantID}] = memberEntry{
			isMember:  isMember[id],
			fetchedAt: now,
		}
	}
	c.mu.Unlock()

	return append(members, fetched...), nil
}

func (c *CachedMembershipIndex) TenantsOf(ctx context.Context, userID uuid.UUID) ([]domain.TenantID, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.tenants[userID]
	c.mu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) <= c.ttl {
		return entry.tenants, nil
	}

	tenants, err := c.inner.TenantsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tenants[userID] = tenantsEntry{tenants: tenants, fetchedAt: now}
	c.mu.Unlock()

	return tenants, nil
}
