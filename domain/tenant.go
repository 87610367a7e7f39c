// Package domain contains core concepts of the conversation engine.
// This file defines tenants and the home-tenant selection rule.
// No storage, network, or UI logic should be added here.
package domain

import (
	"convohub/errors"

	"github.com/samber/lo"
)

// TenantID identifies an organization. Numeric ids give the selection
// rule a total order to reduce over.
type TenantID int64

// ChooseHomeTenant picks the tenant recorded as owner of a new direct
// conversation. The requesting tenant wins when both users belong to it;
// otherwise the smallest shared tenant id is used. The reduction must be
// over an explicit order: two independent requests for the same pair have
// to agree on the owner, and map or slice iteration order guarantees
// nothing across calls or processes.
func ChooseHomeTenant(requesting TenantID, shared []TenantID) (TenantID, error) {
	if len(shared) == 0 {
		return 0, errors.ErrNoSharedTenant
	}
	if lo.Contains(shared, requesting) {
		return requesting, nil
	}
	return lo.Min(shared), nil
}

// SharedTenants intersects two membership sets. Duplicates in either
// input are dropped.
func SharedTenants(a, b []TenantID) []TenantID {
	return lo.Intersect(lo.Uniq(a), lo.Uniq(b))
}
