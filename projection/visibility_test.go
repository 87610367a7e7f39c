package projection

import (
	"testing"
	"time"

	"convohub/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func conv(kind domain.Kind, tenant domain.TenantID, users ...uuid.UUID) domain.Conversation {
	c := domain.Conversation{
		ID:        uuid.New(),
		Kind:      kind,
		TenantID:  tenant,
		CreatedAt: time.Now().UTC(),
	}
	for _, u := range users {
		c.Participants = append(c.Participants, domain.Participant{UserID: u, JoinedAt: c.CreatedAt})
	}
	return c
}

func TestVisibleUnder(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	clara := uuid.New()

	t.Run("should always show conversations owned by the requesting tenant", func(t *testing.T) {
		req := require.New(t)
		home := conv(domain.Direct, 2, alice, bob)

		visible, malformed := VisibleUnder([]domain.Conversation{home}, 2, nil)

		req.Len(visible, 1)
		req.Equal(home.ID, visible[0].ID)
		req.Empty(malformed)
	})

	t.Run("should never show a foreign group even when all members belong here", func(t *testing.T) {
		req := require.New(t)
		group := conv(domain.Group, 2, alice, bob, clara)
		members := MemberSet{alice: {}, bob: {}, clara: {}}

		visible, _ := VisibleUnder([]domain.Conversation{group}, 3, members)

		req.Empty(visible)
	})

	t.Run("should show a foreign direct when every participant is a member", func(t *testing.T) {
		req := require.New(t)
		direct := conv(domain.Direct, 2, alice, bob)
		members := MemberSet{alice: {}, bob: {}}

		visible, _ := VisibleUnder([]domain.Conversation{direct}, 3, members)

		req.Len(visible, 1)
	})

	t.Run("should hide a foreign direct when one participant is missing", func(t *testing.T) {
		req := require.New(t)
		direct := conv(domain.Direct, 2, alice, bob)
		members := MemberSet{alice: {}}

		visible, _ := VisibleUnder([]domain.Conversation{direct}, 1, members)

		req.Empty(visible)
	})

	t.Run("should exclude an empty participant list instead of passing vacuously", func(t *testing.T) {
		req := require.New(t)
		corrupt := conv(domain.Direct, 2)

		visible, malformed := VisibleUnder([]domain.Conversation{corrupt}, 3, MemberSet{})

		req.Empty(visible)
		req.Len(malformed, 1)
	})

	t.Run("should exclude malformed records even under their home tenant", func(t *testing.T) {
		req := require.New(t)
		corrupt := conv(domain.Direct, 2, alice)

		visible, malformed := VisibleUnder([]domain.Conversation{corrupt}, 2, nil)

		req.Empty(visible)
		req.Len(malformed, 1)
	})
}

func TestCrossTenantCandidates(t *testing.T) {
	req := require.New(t)
	alice := uuid.New()
	bob := uuid.New()
	clara := uuid.New()

	convs := []domain.Conversation{
		conv(domain.Direct, 2, alice, bob),   // foreign: candidates
		conv(domain.Direct, 3, alice, clara), // home: no lookup needed
		conv(domain.Group, 2, alice, clara),  // group: never ported
	}

	ids := CrossTenantCandidates(convs, 3)

	req.ElementsMatch([]uuid.UUID{alice, bob}, ids)
	req.Empty(CrossTenantCandidates(nil, 3))
}
