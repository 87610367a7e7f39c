//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"convohub/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IMembershipIndex is the engine's view of the account subsystem that
// owns user-to-tenant membership. Lookups are read-only and may be
// served with seconds-scale staleness without correctness loss.
type IMembershipIndex interface {
	// MembersOf returns the subset of userIDs that belong to tenantID,
	// in one round trip whatever the size of the input. An empty input
	// returns an empty result without touching the index.
	MembersOf(ctx context.Context, tenantID domain.TenantID, userIDs []uuid.UUID) ([]uuid.UUID, error)
	// TenantsOf returns every tenant the user belongs to.
	TenantsOf(ctx context.Context, userID uuid.UUID) ([]domain.TenantID, error)
}

// PostgresMembershipIndex reads the authoritative membership table.
type PostgresMembershipIndex struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresMembershipIndex(pool *pgxpool.Pool, log *slog.Logger) *PostgresMembershipIndex {
	return &PostgresMembershipIndex{pool: pool, log: log}
}

func (m *PostgresMembershipIndex) MembersOf(ctx context.Context, tenantID domain.TenantID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := m.pool.Query(ctx,
		`SELECT user_id FROM tenant_memberships WHERE tenant_id = $1 AND user_id = ANY($2)`,
		int64(tenantID), userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (m *PostgresMembershipIndex) TenantsOf(ctx context.Context, userID uuid.UUID) ([]domain.TenantID, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT tenant_id FROM tenant_memberships WHERE user_id = $1 ORDER BY tenant_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.TenantID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, domain.TenantID(id))
	}
	return tenants, rows.Err()
}

// Grant and Revoke exist for seeding and operations tooling. The engine
// itself never writes memberships; the account subsystem owns them.
func (m *PostgresMembershipIndex) Grant(ctx context.Context, userID uuid.UUID, tenantID domain.TenantID) error {
	_, err := m.pool.Exec(ctx,
		`INSERT INTO tenant_memberships (user_id, tenant_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, int64(tenantID))
	return err
}

func (m *PostgresMembershipIndex) Revoke(ctx context.Context, userID uuid.UUID, tenantID domain.TenantID) error {
	_, err := m.pool.Exec(ctx,
		`DELETE FROM tenant_memberships WHERE user_id = $1 AND tenant_id = $2`,
		userID, int64(tenantID))
	return err
}
