package services

import (
	"context"
	"fmt"
	"log/slog"

	"convohub/domain"
	"convohub/observability"
	"convohub/projection"
	"convohub/repositories"

	"github.com/google/uuid"
)

type IVisibilityService interface {
	VisibleConversations(ctx context.Context, userID uuid.UUID, requestingTenant domain.TenantID) ([]domain.Conversation, error)
}

// VisibilityService computes which of a user's conversations the
// requesting tenant may display. The whole computation costs at most
// two external round trips: one listing (participants pre-attached) and
// one bulk membership query, whatever the number of conversations.
type VisibilityService struct {
	conversations repositories.IConversationRepository
	bulk          *BulkMembershipResolver
	monitoring    *observability.MonitoringManager
	log           *slog.Logger
}

func NewVisibilityService(
	conversations repositories.IConversationRepository,
	bulk *BulkMembershipResolver,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *VisibilityService {
	return &VisibilityService{
		conversations: conversations,
		bulk:          bulk,
		monitoring:    monitoring,
		log:           log,
	}
}

func (s *VisibilityService) VisibleConversations(ctx context.Context, userID uuid.UUID, requestingTenant domain.TenantID) ([]domain.Conversation, error) {
	s.monitoring.IncrListings()

	convs, err := s.conversations.ListConversations(userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations of %s: %w", userID, err)
	}

	candidates := projection.CrossTenantCandidates(convs, requestingTenant)
	members, err := s.bulk.Resolve(ctx, candidates, requestingTenant)
	if err != nil {
		return nil, fmt.Errorf("bulk membership for tenant %d: %w", requestingTenant, err)
	}

	visible, malformed := projection.VisibleUnder(convs, requestingTenant, members)
	if len(malformed) > 0 {
		s.monitoring.AddIntegrityExclusions(uint64(len(malformed)))
		for _, conv := range malformed {
			s.log.Warn("Excluding malformed conversation record",
				"conversation", conv.ID, "kind", conv.Kind, "participants", len(conv.Participants))
		}
	}
	return visible, nil
}
