package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Direct Kind = "direct"
	Group  Kind = "group"
)

// Participant links a user to a conversation.
type Participant struct {
	UserID   uuid.UUID
	JoinedAt time.Time
}

// Conversation is the aggregate persisted by the conversation store.
// A direct conversation is identified by its unordered user pair,
// system-wide and independently of the tenant recorded as its owner.
// A group conversation belongs to exactly one tenant.
type Conversation struct {
	ID           uuid.UUID
	Kind         Kind
	TenantID     TenantID
	CreatedAt    time.Time
	Participants []Participant
}

// ParticipantIDs returns the user ids of all participants, in stored order.
func (c Conversation) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// WellFormed reports whether the record satisfies the data model.
// A direct conversation has exactly two distinct participants; any
// conversation with an empty participant set is corrupt. Malformed
// records must never become visible through vacuous filtering.
func (c Conversation) WellFormed() bool {
	if c.ID == uuid.Nil || len(c.Participants) == 0 {
		return false
	}
	if c.Kind == Direct {
		return len(c.Participants) == 2 &&
			c.Participants[0].UserID != c.Participants[1].UserID
	}
	return c.Kind == Group
}

// CanonicalPair orders two user ids under the lexicographic order of
// their canonical string form. The store keys direct conversations by
// this ordered pair, which is what makes the uniqueness constraint hold
// for both argument orders.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}
