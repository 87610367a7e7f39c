package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"convohub/domain"
	"convohub/errors"
	"convohub/observability"
	"convohub/repositories"

	"github.com/google/uuid"
)

type IResolverService interface {
	ResolveDirect(ctx context.Context, userA, userB uuid.UUID, requestingTenant domain.TenantID) (domain.Conversation, error)
}

// ResolverService guarantees exactly one direct conversation per user
// pair, whatever tenant context either side is operating in.
type ResolverService struct {
	conversations repositories.IConversationRepository
	memberships   repositories.IMembershipIndex
	monitoring    *observability.MonitoringManager
	log           *slog.Logger
}

func NewResolverService(
	conversations repositories.IConversationRepository,
	memberships repositories.IMembershipIndex,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *ResolverService {
	return &ResolverService{
		conversations: conversations,
		memberships:   memberships,
		monitoring:    monitoring,
		log:           log,
	}
}

// ResolveDirect is an idempotent read-or-create.
//
// The lookup never filters by tenant: the pair identifies the
// conversation system-wide. Only a miss needs the membership index, to
// compute the shared tenant set the home tenant is chosen from. An
// existing conversation is returned as stored; its home tenant is never
// reassigned, even when the requesting tenant differs.
func (s *ResolverService) ResolveDirect(ctx context.Context, userA, userB uuid.UUID, requestingTenant domain.TenantID) (domain.Conversation, error) {
	if userA == userB {
		return domain.Conversation{}, errors.ErrSamePairUser
	}
	s.monitoring.IncrResolutions()

	conv, err := s.conversations.FindDirect(userA, userB)
	if err == nil {
		return conv, nil
	}
	if !stderrors.Is(err, errors.ErrConversationNotFound) {
		return domain.Conversation{}, fmt.Errorf("direct lookup failed: %w", err)
	}

	home, err := s.chooseHome(ctx, userA, userB, requestingTenant)
	if err != nil {
		return domain.Conversation{}, err
	}

	created, err := s.conversations.CreateDirect(userA, userB, home)
	if stderrors.Is(err, errors.ErrConversationExists) {
		// Lost the creation race. The store committed exactly one row
		// for this pair; return the winner's instead of failing.
		s.monitoring.IncrConflictsAbsorbed()
		s.log.Debug("Creation race absorbed", "userA", userA, "userB", userB)
		return s.conversations.FindDirect(userA, userB)
	}
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("direct creation failed: %w", err)
	}

	s.monitoring.IncrConversationsCreated()
	s.log.Info("Direct conversation created",
		"conversation", created.ID, "home_tenant", created.TenantID)
	return created, nil
}

func (s *ResolverService) chooseHome(ctx context.Context, userA, userB uuid.UUID, requestingTenant domain.TenantID) (domain.TenantID, error) {
	tenantsA, err := s.memberships.TenantsOf(ctx, userA)
	if err != nil {
		return 0, fmt.Errorf("memberships of %s: %w", userA, err)
	}
	tenantsB, err := s.memberships.TenantsOf(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("memberships of %s: %w", userB, err)
	}

	shared := domain.SharedTenants(tenantsA, tenantsB)
	home, err := domain.ChooseHomeTenant(requestingTenant, shared)
	if err != nil {
		return 0, fmt.Errorf("%w: users %s and %s", err, userA, userB)
	}
	return home, nil
}
