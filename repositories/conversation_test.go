package repositories

import (
	"log/slog"
	"sync"
	"testing"

	"convohub/domain"
	"convohub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_CreateDirect_Then_FindDirect(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())
	alice := uuid.New()
	bob := uuid.New()

	created, err := repository.CreateDirect(alice, bob, 2)
	req.NoError(err)
	req.Equal(domain.Direct, created.Kind)
	req.Equal(domain.TenantID(2), created.TenantID)
	req.Len(created.Participants, 2)

	found, err := repository.FindDirect(alice, bob)
	req.NoError(err)
	req.Equal(created.ID, found.ID)

	// The pair is unordered: the reversed lookup hits the same row.
	reversed, err := repository.FindDirect(bob, alice)
	req.NoError(err)
	req.Equal(created.ID, reversed.ID)
}

func Test_FindDirect_Unknown_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	_, err := repository.FindDirect(uuid.New(), uuid.New())
	req.ErrorIs(err, errors.ErrConversationNotFound)
}

func Test_CreateDirect_Rejects_Duplicate_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())
	alice := uuid.New()
	bob := uuid.New()

	_, err := repository.CreateDirect(alice, bob, 2)
	req.NoError(err)

	_, err = repository.CreateDirect(alice, bob, 3)
	req.ErrorIs(err, errors.ErrConversationExists)

	// Argument order must not open a second row for the same pair.
	_, err = repository.CreateDirect(bob, alice, 3)
	req.ErrorIs(err, errors.ErrConversationExists)
}

func Test_CreateDirect_Rejects_Self_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())
	alice := uuid.New()

	_, err := repository.CreateDirect(alice, alice, 2)
	req.ErrorIs(err, errors.ErrSamePairUser)
}

func Test_Concurrent_CreateDirect_Commits_One_Row(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())
	alice := uuid.New()
	bob := uuid.New()

	const writers = 8
	results := make([]error, writers)
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			// Half the writers use the reversed argument order.
			a, b := alice, bob
			if i%2 == 1 {
				a, b = bob, alice
			}
			_, results[i] = repository.CreateDirect(a, b, 2)
		}(i)
	}
	wg.Wait()

	winners := lo.CountBy(results, func(err error) bool { return err == nil })
	req.Equal(1, winners)
	for _, err := range results {
		if err != nil {
			req.ErrorIs(err, errors.ErrConversationExists)
		}
	}

	found, err := repository.FindDirect(alice, bob)
	req.NoError(err)
	req.Len(found.Participants, 2)
}

func Test_ListConversations_Attaches_Participants(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())
	alice := uuid.New()
	bob := uuid.New()
	clara := uuid.New()

	direct, err := repository.CreateDirect(alice, bob, 2)
	req.NoError(err)
	group, err := repository.CreateGroup(3, []uuid.UUID{alice, bob, clara})
	req.NoError(err)
	_, err = repository.CreateDirect(bob, clara, 2)
	req.NoError(err)

	convs, err := repository.ListConversations(alice)
	req.NoError(err)
	req.Len(convs, 2)

	ids := lo.Map(convs, func(c domain.Conversation, _ int) uuid.UUID { return c.ID })
	req.ElementsMatch([]uuid.UUID{direct.ID, group.ID}, ids)
	for _, conv := range convs {
		req.NotEmpty(conv.Participants)
	}
}

func Test_ListConversations_Empty_For_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	convs, err := repository.ListConversations(uuid.New())
	req.NoError(err)
	req.Empty(convs)
}

func Test_CreateGroup_Requires_Members(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t), slog.Default())

	_, err := repository.CreateGroup(2, nil)
	req.ErrorIs(err, errors.ErrMalformedConversation)
}
