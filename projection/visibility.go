// Package projection computes read models from loaded state.
// Visibility is a pure function of a membership snapshot and a
// conversation set; it holds no state of its own.
package projection

import (
	"convohub/domain"

	"github.com/google/uuid"
)

// MemberSet answers "does this user belong to the requesting tenant"
// in O(1). It is built once per listing from a single bulk query.
type MemberSet map[uuid.UUID]struct{}

func (s MemberSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// VisibleUnder filters the user's conversations down to those the
// requesting tenant may display:
//
//   - home tenant matches: always visible.
//   - group owned elsewhere: never visible, groups are single-tenant.
//   - direct owned elsewhere: visible only when every participant
//     belongs to the requesting tenant.
//
// Records failing the data model are returned separately so the caller
// can log them; they are excluded before any rule runs, which keeps an
// empty participant list from passing the every-participant check
// vacuously.
func VisibleUnder(convs []domain.Conversation, tenantID domain.TenantID, members MemberSet) (visible, malformed []domain.Conversation) {
	for _, conv := range convs {
		if !conv.WellFormed() {
			malformed = append(malformed, conv)
			continue
		}

		switch {
		case conv.TenantID == tenantID:
			visible = append(visible, conv)
		case conv.Kind == domain.Group:
			// No cross-tenant porting for groups.
		default:
			if allMembers(conv, members) {
				visible = append(visible, conv)
			}
		}
	}
	return visible, malformed
}

// CrossTenantCandidates gathers every user id appearing in a direct
// conversation owned by another tenant. This is the single id set the
// bulk membership query resolves, whatever the number of conversations.
func CrossTenantCandidates(convs []domain.Conversation, tenantID domain.TenantID) []uuid.UUID {
	var ids []uuid.UUID
	for _, conv := range convs {
		if conv.Kind != domain.Direct || conv.TenantID == tenantID {
			continue
		}
		ids = append(ids, conv.ParticipantIDs()...)
	}
	return ids
}

func allMembers(conv domain.Conversation, members MemberSet) bool {
	for _, p := range conv.Participants {
		if !members.Contains(p.UserID) {
			return false
		}
	}
	return true
}
