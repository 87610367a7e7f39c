//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"convohub/domain"
	"convohub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IConversationRepository interface {
	// FindDirect looks up the unique direct conversation for an unordered
	// user pair. The lookup is tenant-agnostic on purpose: it is what
	// keeps the pair unique across every tenant the two users share.
	FindDirect(userA, userB uuid.UUID) (domain.Conversation, error)
	// CreateDirect inserts a new direct conversation owned by tenantID.
	// It returns ErrConversationExists when the canonical pair key is
	// already committed, including by a concurrent writer.
	CreateDirect(userA, userB uuid.UUID, tenantID domain.TenantID) (domain.Conversation, error)
	// CreateGroup inserts a single-tenant group conversation.
	CreateGroup(tenantID domain.TenantID, userIDs []uuid.UUID) (domain.Conversation, error)
	// ListConversations returns every conversation the user participates
	// in, each with its full participant list attached. Callers never
	// need a follow-up fetch per row.
	ListConversations(userID uuid.UUID) ([]domain.Conversation, error)
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) *ConversationRepository {
	return &ConversationRepository{db: db, log: log}
}

// diskConversation is the stored shape of a conversation record.
type diskConversation struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"`
	TenantID     int64             `json:"tenant_id"`
	CreatedAt    int64             `json:"created_at"`
	Participants []diskParticipant `json:"participants"`
}

type diskParticipant struct {
	UserID   string `json:"user_id"`
	JoinedAt int64  `json:"joined_at"`
}

// Key layout:
//
//	conv:{conversation_id}        -> conversation record
//	pair:{min_user}:{max_user}    -> conversation id (canonical pair key)
//	user:{user_id}:{conv_id}      -> nil (listing index)
//
// The pair key is the storage-level uniqueness constraint required for
// direct conversations: both argument orders map to the same key.
func recordKey(id uuid.UUID) []byte {
	return []byte("conv:" + id.String())
}

func pairKey(a, b uuid.UUID) []byte {
	first, second := domain.CanonicalPair(a, b)
	return []byte(fmt.Sprintf("pair:%s:%s", first, second))
}

func userIndexKey(userID, convID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("user:%s:%s", userID, convID))
}

func userIndexPrefix(userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("user:%s:", userID))
}

func (r ConversationRepository) FindDirect(userA, userB uuid.UUID) (domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(userA, userB))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err = item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}
		conv, err = getRecord(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

func (r ConversationRepository) CreateDirect(userA, userB uuid.UUID, tenantID domain.TenantID) (domain.Conversation, error) {
	if userA == userB {
		return domain.Conversation{}, errors.ErrSamePairUser
	}

	first, second := domain.CanonicalPair(userA, userB)
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        uuid.New(),
		Kind:      domain.Direct,
		TenantID:  tenantID,
		CreatedAt: now,
		Participants: []domain.Participant{
			{UserID: first, JoinedAt: now},
			{UserID: second, JoinedAt: now},
		},
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key := pairKey(userA, userB)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrConversationExists
		}
		if err := txn.Set(key, []byte(conv.ID.String())); err != nil {
			return err
		}
		return setRecord(txn, conv)
	})
	// A concurrent Update racing on the same pair key commits first and
	// surfaces here as a transaction conflict. Same outcome as finding
	// the key already taken: the caller re-reads the winner's row.
	if err == badger.ErrConflict {
		err = errors.ErrConversationExists
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

func (r ConversationRepository) CreateGroup(tenantID domain.TenantID, userIDs []uuid.UUID) (domain.Conversation, error) {
	if len(userIDs) == 0 {
		return domain.Conversation{}, errors.ErrMalformedConversation
	}

	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        uuid.New(),
		Kind:      domain.Group,
		TenantID:  tenantID,
		CreatedAt: now,
	}
	for _, id := range userIDs {
		conv.Participants = append(conv.Participants, domain.Participant{UserID: id, JoinedAt: now})
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return setRecord(txn, conv)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// ListConversations performs one prefix scan over the user's listing
// index and resolves every record inside the same read transaction.
// Records that no longer decode are logged and skipped; a broken row
// must not abort the whole listing.
func (r ConversationRepository) ListConversations(userID uuid.UUID) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	prefix := userIndexPrefix(userID)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rawID := it.Item().Key()[len(prefix):]
			convID, err := uuid.ParseBytes(rawID)
			if err != nil {
				r.log.Warn("Skipping unparsable index key", "key", string(it.Item().Key()))
				continue
			}
			conv, err := getRecord(txn, convID)
			if err != nil {
				r.log.Warn("Skipping unreadable conversation record", "conversation", convID, "error", err)
				continue
			}
			convs = append(convs, conv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// DecodeConversation decodes a stored conversation record. Exposed for
// the inspection tooling; the repository itself goes through getRecord.
func DecodeConversation(data []byte) (domain.Conversation, error) {
	var disk diskConversation
	if err := json.Unmarshal(data, &disk); err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(disk)
}

func setRecord(txn *badger.Txn, conv domain.Conversation) error {
	data, err := json.Marshal(fromConversation(conv))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err = txn.Set(recordKey(conv.ID), data); err != nil {
		return err
	}
	for _, p := range conv.Participants {
		if err = txn.Set(userIndexKey(p.UserID, conv.ID), nil); err != nil {
			return err
		}
	}
	return nil
}

func getRecord(txn *badger.Txn, id uuid.UUID) (domain.Conversation, error) {
	item, err := txn.Get(recordKey(id))
	if err != nil {
		return domain.Conversation{}, err
	}
	var disk diskConversation
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	}); err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(disk)
}

func fromConversation(conv domain.Conversation) diskConversation {
	disk := diskConversation{
		ID:        conv.ID.String(),
		Kind:      string(conv.Kind),
		TenantID:  int64(conv.TenantID),
		CreatedAt: conv.CreatedAt.UnixNano(),
	}
	for _, p := range conv.Participants {
		disk.Participants = append(disk.Participants, diskParticipant{
			UserID:   p.UserID.String(),
			JoinedAt: p.JoinedAt.UnixNano(),
		})
	}
	return disk
}

func toConversation(disk diskConversation) (domain.Conversation, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	conv := domain.Conversation{
		ID:        id,
		Kind:      domain.Kind(disk.Kind),
		TenantID:  domain.TenantID(disk.TenantID),
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
	}
	for _, p := range disk.Participants {
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			return domain.Conversation{}, err
		}
		conv.Participants = append(conv.Participants, domain.Participant{
			UserID:   userID,
			JoinedAt: time.Unix(0, p.JoinedAt).UTC(),
		})
	}
	return conv, nil
}
