package services

import (
	"context"
	"log/slog"

	"convohub/domain"
	"convohub/projection"
	"convohub/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// BulkMembershipResolver turns an arbitrary candidate id set into an
// O(1) membership set with a single round trip to the membership index.
// Collect every candidate first, resolve once, filter in memory: this is
// what keeps a listing of K conversations from issuing K queries.
type BulkMembershipResolver struct {
	index repositories.IMembershipIndex
	log   *slog.Logger
}

func NewBulkMembershipResolver(index repositories.IMembershipIndex, log *slog.Logger) *BulkMembershipResolver {
	return &BulkMembershipResolver{index: index, log: log}
}

func (r *BulkMembershipResolver) Resolve(ctx context.Context, userIDs []uuid.UUID, tenantID domain.TenantID) (projection.MemberSet, error) {
	unique := lo.Uniq(userIDs)
	if len(unique) == 0 {
		return projection.MemberSet{}, nil
	}

	members, err := r.index.MembersOf(ctx, tenantID, unique)
	if err != nil {
		return nil, err
	}

	return lo.SliceToMap(members, func(id uuid.UUID) (uuid.UUID, struct{}) {
		return id, struct{}{}
	}), nil
}
