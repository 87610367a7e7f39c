package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"convohub/domain"
	"convohub/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCachedMembershipIndex_TenantsOf(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	alice := uuid.New()

	t.Run("should serve repeated lookups from the snapshot", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIMembershipIndex(ctrl)
		cached := NewCachedMembershipIndex(inner, time.Minute, log)

		inner.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1, 2}, nil).Times(1)

		for i := 0; i < 5; i++ {
			tenants, err := cached.TenantsOf(ctx, alice)
			req.NoError(err)
			req.Equal([]domain.TenantID{1, 2}, tenants)
		}
	})

	t.Run("should refetch once the entry expired", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIMembershipIndex(ctrl)
		cached := NewCachedMembershipIndex(inner, 0, log)

		inner.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1}, nil).Times(2)

		_, err := cached.TenantsOf(ctx, alice)
		req.NoError(err)
		_, err = cached.TenantsOf(ctx, alice)
		req.NoError(err)
	})
}

func TestCachedMembershipIndex_MembersOf(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	alice := uuid.New()
	bob := uuid.New()

	t.Run("should only fetch ids missing from the snapshot", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIMembershipIndex(ctrl)
		cached := NewCachedMembershipIndex(inner, time.Minute, log)

		inner.EXPECT().
			MembersOf(ctx, domain.TenantID(3), []uuid.UUID{alice, bob}).
			Return([]uuid.UUID{alice}, nil).
			Times(1)

		members, err := cached.MembersOf(ctx, 3, []uuid.UUID{alice, bob})
		req.NoError(err)
		req.Equal([]uuid.UUID{alice}, members)

		// Second call: both answers, positive and negative, are cached.
		members, err = cached.MembersOf(ctx, 3, []uuid.UUID{alice, bob})
		req.NoError(err)
		req.Equal([]uuid.UUID{alice}, members)
	})

	t.Run("should cache per tenant", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIMembershipIndex(ctrl)
		cached := NewCachedMembershipIndex(inner, time.Minute, log)

		inner.EXPECT().
			MembersOf(ctx, domain.TenantID(3), []uuid.UUID{alice}).
			Return([]uuid.UUID{alice}, nil).
			Times(1)
		inner.EXPECT().
			MembersOf(ctx, domain.TenantID(4), []uuid.UUID{alice}).
			Return(nil, nil).
			Times(1)

		members, err := cached.MembersOf(ctx, 3, []uuid.UUID{alice})
		req.NoError(err)
		req.Len(members, 1)

		members, err = cached.MembersOf(ctx, 4, []uuid.UUID{alice})
		req.NoError(err)
		req.Empty(members)
	})
}
