package services

import (
	"context"
	"log/slog"
	"testing"

	"convohub/domain"
	"convohub/errors"
	"convohub/mocks"
	"convohub/observability"
	"convohub/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newResolverFixture(t *testing.T) (*ResolverService, *mocks.MockIMembershipIndex, repositories.IConversationRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	ctrl := gomock.NewController(t)
	memberships := mocks.NewMockIMembershipIndex(ctrl)
	conversations := repositories.NewConversationRepository(db, log)
	svc := NewResolverService(conversations, memberships, observability.NewMonitoringManager(log), log)
	return svc, memberships, conversations
}

func TestResolverService_ResolveDirect(t *testing.T) {
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	t.Run("should create with the smallest shared tenant when the requesting one is not shared", func(t *testing.T) {
		req := require.New(t)
		svc, memberships, _ := newResolverFixture(t)

		// Alice is in T1, T2, T3; Bob in T2, T3. Requesting from T1.
		memberships.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1, 2, 3}, nil)
		memberships.EXPECT().TenantsOf(ctx, bob).Return([]domain.TenantID{2, 3}, nil)

		conv, err := svc.ResolveDirect(ctx, alice, bob, 1)
		req.NoError(err)
		req.Equal(domain.TenantID(2), conv.TenantID)
		req.Equal(domain.Direct, conv.Kind)
	})

	t.Run("should keep the requesting tenant when shared", func(t *testing.T) {
		req := require.New(t)
		svc, memberships, _ := newResolverFixture(t)

		memberships.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1, 2, 3}, nil)
		memberships.EXPECT().TenantsOf(ctx, bob).Return([]domain.TenantID{2, 3}, nil)

		conv, err := svc.ResolveDirect(ctx, alice, bob, 3)
		req.NoError(err)
		req.Equal(domain.TenantID(3), conv.TenantID)
	})

	t.Run("should return the same conversation on repeated calls from any tenant", func(t *testing.T) {
		req := require.New(t)
		svc, memberships, _ := newResolverFixture(t)

		// Membership is only consulted for the first call; the two
		// following resolutions are pure lookups.
		memberships.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1, 2, 3}, nil)
		memberships.EXPECT().TenantsOf(ctx, bob).Return([]domain.TenantID{2, 3}, nil)

		first, err := svc.ResolveDirect(ctx, alice, bob, 1)
		req.NoError(err)

		second, err := svc.ResolveDirect(ctx, alice, bob, 2)
		req.NoError(err)
		req.Equal(first.ID, second.ID)

		// Reversed pair, different tenant: still the same conversation.
		third, err := svc.ResolveDirect(ctx, bob, alice, 3)
		req.NoError(err)
		req.Equal(first.ID, third.ID)
		req.Equal(domain.TenantID(2), third.TenantID)
	})

	t.Run("should never reassign the home tenant of an existing conversation", func(t *testing.T) {
		req := require.New(t)
		svc, memberships, conversations := newResolverFixture(t)

		existing, err := conversations.CreateDirect(alice, bob, 7)
		req.NoError(err)
		memberships.EXPECT().TenantsOf(gomock.Any(), gomock.Any()).Times(0)

		conv, err := svc.ResolveDirect(ctx, alice, bob, 3)
		req.NoError(err)
		req.Equal(existing.ID, conv.ID)
		req.Equal(domain.TenantID(7), conv.TenantID)
	})

	t.Run("should fail with no shared tenant", func(t *testing.T) {
		req := require.New(t)
		svc, memberships, _ := newResolverFixture(t)

		memberships.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{1}, nil)
		memberships.EXPECT().TenantsOf(ctx, bob).Return([]domain.TenantID{4}, nil)

		_, err := svc.ResolveDirect(ctx, alice, bob, 1)
		req.ErrorIs(err, errors.ErrNoSharedTenant)
	})

	t.Run("should reject resolving a user against themselves", func(t *testing.T) {
		req := require.New(t)
		svc, _, _ := newResolverFixture(t)

		_, err := svc.ResolveDirect(ctx, alice, alice, 1)
		req.ErrorIs(err, errors.ErrSamePairUser)
	})
}

func TestResolverService_Absorbs_Creation_Race(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()
	log := slog.Default()
	ctrl := gomock.NewController(t)

	memberships := mocks.NewMockIMembershipIndex(ctrl)
	conversations := mocks.NewMockIConversationRepository(ctrl)
	svc := NewResolverService(conversations, memberships, observability.NewMonitoringManager(log), log)

	winner := domain.Conversation{ID: uuid.New(), Kind: domain.Direct, TenantID: 2}

	// First lookup misses, the insert loses the race, the re-read
	// returns the winner's row. The caller never sees the conflict.
	gomock.InOrder(
		conversations.EXPECT().FindDirect(alice, bob).Return(domain.Conversation{}, errors.ErrConversationNotFound),
		conversations.EXPECT().CreateDirect(alice, bob, domain.TenantID(2)).Return(domain.Conversation{}, errors.ErrConversationExists),
		conversations.EXPECT().FindDirect(alice, bob).Return(winner, nil),
	)
	memberships.EXPECT().TenantsOf(ctx, alice).Return([]domain.TenantID{2}, nil)
	memberships.EXPECT().TenantsOf(ctx, bob).Return([]domain.TenantID{2}, nil)

	conv, err := svc.ResolveDirect(ctx, alice, bob, 2)
	req.NoError(err)
	req.Equal(winner.ID, conv.ID)
}
