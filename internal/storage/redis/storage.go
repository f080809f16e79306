package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Client exposes the underlying client so the lock manager can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getJSON loads and decodes a single key, mapping a missing key to notFound
func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User, cred *model.Credential) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return err
	}
	credData, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	// Claiming the index first makes username uniqueness atomic
	claimed, err := s.client.SetNX(ctx, s.keys.usernameIndex(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameTaken
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.user(user.ID), userData, 0)
	pipe.Set(ctx, s.keys.credential(cred.Username), credData, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		s.client.Del(context.WithoutCancel(ctx), s.keys.usernameIndex(user.Username))
		return err
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := getJSON[model.User](ctx, s.client, s.keys.user(id), model.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, model.ErrUserNotFound
	}
	if user.Inventory == nil {
		user.Inventory = map[model.PowerUpID]int{}
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := s.client.Get(ctx, s.keys.usernameIndex(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	return getJSON[model.Credential](ctx, s.client, s.keys.credential(username), model.ErrUserNotFound)
}

// Catalog operations

func (s *Storage) SaveCatalog(ctx context.Context, catalog *model.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keys.catalog(), data, 0).Err()
}

func (s *Storage) GetCatalog(ctx context.Context) (*model.Catalog, error) {
	return getJSON[model.Catalog](ctx, s.client, s.keys.catalog(), model.ErrCatalogNotLoaded)
}

// Deck operations

func (s *Storage) CreateDeck(ctx context.Context, deck *model.Deck) error {
	data, err := json.Marshal(deck)
	if err != nil {
		return err
	}

	nameKey := s.keys.deckNameIndex(deck.OwnerID, deck.Name)
	claimed, err := s.client.SetNX(ctx, nameKey, string(deck.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateDeckName
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.deck(deck.ID), data, 0)
	pipe.SAdd(ctx, s.keys.decksForOwner(deck.OwnerID), string(deck.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		s.client.Del(context.WithoutCancel(ctx), nameKey)
		return err
	}
	return nil
}

func (s *Storage) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	existing, err := s.GetDeck(ctx, deck.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(deck)
	if err != nil {
		return err
	}

	oldNameKey := s.keys.deckNameIndex(existing.OwnerID, existing.Name)
	newNameKey := s.keys.deckNameIndex(deck.OwnerID, deck.Name)
	if newNameKey != oldNameKey {
		claimed, err := s.client.SetNX(ctx, newNameKey, string(deck.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrDuplicateDeckName
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.deck(deck.ID), data, 0)
	if newNameKey != oldNameKey {
		pipe.Del(ctx, oldNameKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		if newNameKey != oldNameKey {
			s.client.Del(context.WithoutCancel(ctx), newNameKey)
		}
		return err
	}
	return nil
}

func (s *Storage) GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	return getJSON[model.Deck](ctx, s.client, s.keys.deck(id), model.ErrDeckNotFound)
}

func (s *Storage) GetDeckByName(ctx context.Context, ownerID model.UserID, name string) (*model.Deck, error) {
	id, err := s.client.Get(ctx, s.keys.deckNameIndex(ownerID, name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDeckNotFound
		}
		return nil, err
	}
	return s.GetDeck(ctx, model.DeckID(id))
}

func (s *Storage) ListDecks(ctx context.Context, ownerID model.UserID) ([]*model.Deck, error) {
	ids, err := s.client.SMembers(ctx, s.keys.decksForOwner(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.deck(model.DeckID(id))
	}
	decks, err := mgetJSON[model.Deck](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(decks, func(a, b *model.Deck) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return decks, nil
}

func (s *Storage) DeleteDeck(ctx context.Context, id model.DeckID) error {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.deck(id))
	pipe.Del(ctx, s.keys.deckNameIndex(deck.OwnerID, deck.Name))
	pipe.SRem(ctx, s.keys.decksForOwner(deck.OwnerID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Ledger operations

// Commit watches every user key, checks versions, then writes users and
// history in one MULTI/EXEC. A concurrent write to a watched key aborts EXEC.
func (s *Storage) Commit(ctx context.Context, c *storage.Commit) error {
	userKeys := make([]string, len(c.Users))
	for i, u := range c.Users {
		userKeys[i] = s.keys.user(u.ID)
	}

	txf := func(tx *redis.Tx) error {
		payloads := make([][]byte, len(c.Users))
		for i, u := range c.Users {
			stored, err := getJSON[model.User](ctx, tx, userKeys[i], model.ErrUserNotFound)
			if err != nil {
				return err
			}
			if stored.Version != u.Version {
				return model.ErrVersionConflict
			}
			next := *u
			next.Version++
			data, err := json.Marshal(&next)
			if err != nil {
				return err
			}
			payloads[i] = data
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i := range c.Users {
				pipe.Set(ctx, userKeys[i], payloads[i], 0)
			}
			return s.queueRecords(ctx, pipe, c)
		})
		return err
	}

	var err error
	if len(userKeys) == 0 {
		// History-only commits need no WATCH
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.queueRecords(ctx, pipe, c)
		})
	} else {
		err = s.client.Watch(ctx, txf, userKeys...)
	}
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrVersionConflict
	}
	if err != nil {
		return err
	}
	for _, u := range c.Users {
		u.Version++
	}
	return nil
}

// queueRecords queues the commit's history records
func (s *Storage) queueRecords(ctx context.Context, pipe redis.Pipeliner, c *storage.Commit) error {
	if c.Match != nil {
		m := c.Match
		if err := s.queueHistory(ctx, pipe, s.keys.match(m.ID), m, kindMatches,
			string(m.ID), m.CreatedAt, m.Player1ID, m.Player2ID); err != nil {
			return err
		}
	}
	if c.Topup != nil {
		t := c.Topup
		if err := s.queueHistory(ctx, pipe, s.keys.topup(t.ID), t, kindTopups,
			string(t.ID), t.CreatedAt, t.UserID); err != nil {
			return err
		}
	}
	if c.Transaction != nil {
		t := c.Transaction
		if err := s.queueHistory(ctx, pipe, s.keys.transaction(t.ID), t, kindTransactions,
			string(t.ID), t.CreatedAt, t.UserID); err != nil {
			return err
		}
	}
	return nil
}

// queueHistory stores a record and adds it to the global and per-user indexes
func (s *Storage) queueHistory(ctx context.Context, pipe redis.Pipeliner, key string, record any,
	kind, id string, createdAt time.Time, userIDs ...model.UserID) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	z := redis.Z{Score: float64(createdAt.UnixMilli()), Member: id}
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, s.keys.history(kind, ""), z)
	for _, userID := range userIDs {
		pipe.ZAdd(ctx, s.keys.history(kind, userID), z)
	}
	return nil
}

// History operations

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.HistoryPlay, error) {
	m, err := getJSON[model.HistoryPlay](ctx, s.client, s.keys.match(id), model.ErrMatchNotFound)
	if err != nil {
		return nil, err
	}
	if m.DeletedAt != nil {
		return nil, model.ErrMatchNotFound
	}
	return m, nil
}

func (s *Storage) ListMatches(ctx context.Context, userID model.UserID) ([]*model.HistoryPlay, error) {
	matches, err := listHistory[model.HistoryPlay](ctx, s, kindMatches, userID, func(id string) string {
		return s.keys.match(model.MatchID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortNewestFirst(matches, func(m *model.HistoryPlay) time.Time { return m.CreatedAt })
	return matches, nil
}

// SoftDeleteMatch stamps DeletedAt on the record and drops it from every index
func (s *Storage) SoftDeleteMatch(ctx context.Context, id model.MatchID, at time.Time) error {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	m.DeletedAt = &at
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.match(id), data, 0)
	pipe.ZRem(ctx, s.keys.history(kindMatches, ""), string(id))
	pipe.ZRem(ctx, s.keys.history(kindMatches, m.Player1ID), string(id))
	pipe.ZRem(ctx, s.keys.history(kindMatches, m.Player2ID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListTopups(ctx context.Context, userID model.UserID) ([]*model.HistoryTopup, error) {
	topups, err := listHistory[model.HistoryTopup](ctx, s, kindTopups, userID, func(id string) string {
		return s.keys.topup(model.TopupID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortNewestFirst(topups, func(t *model.HistoryTopup) time.Time { return t.CreatedAt })
	return topups, nil
}

func (s *Storage) ListTransactions(ctx context.Context, userID model.UserID) ([]*model.Transaction, error) {
	txs, err := listHistory[model.Transaction](ctx, s, kindTransactions, userID, func(id string) string {
		return s.keys.transaction(model.TransactionID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortNewestFirst(txs, func(t *model.Transaction) time.Time { return t.CreatedAt })
	return txs, nil
}

// listHistory reads an index newest first and loads the referenced records
func listHistory[T any](ctx context.Context, s *Storage, kind string, userID model.UserID, keyFor func(string) string) ([]*T, error) {
	ids, err := s.client.ZRevRange(ctx, s.keys.history(kind, userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFor(id)
	}
	return mgetJSON[T](ctx, s.client, keys)
}

// mgetJSON loads many keys at once, skipping keys that no longer exist
func mgetJSON[T any](ctx context.Context, c *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	result := make([]*T, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		result = append(result, &item)
	}
	return result, nil
}
