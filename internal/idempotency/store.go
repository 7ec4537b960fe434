package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// idem:txn:{owner_id}:{key} -> "pending" | transaction id
	keyTransactionCreate = "idem:txn:%s:%s"
	pendingMarker        = "pending"
)

var DefaultTTL = 24 * time.Hour

var ErrInFlight = errors.New("request with this idempotency key is still in flight")

// Store reserves client supplied idempotency keys in Redis so a retried
// POST cannot record the same transaction twice.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(ownerID uuid.UUID, idemKey string) string {
	return fmt.Sprintf(keyTransactionCreate, ownerID, idemKey)
}

// Reserve claims idemKey for owner. When the key was already completed it
// returns the stored transaction id and ok=false; a key still being
// processed yields ErrInFlight.
func (s *Store) Reserve(ctx context.Context, ownerID uuid.UUID, idemKey string) (existing uuid.UUID, ok bool, err error) {
	k := key(ownerID, idemKey)
	set, err := s.rdb.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if set {
		return uuid.Nil, true, nil
	}

	val, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		set, err = s.rdb.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if set {
			return uuid.Nil, true, nil
		}
		return uuid.Nil, false, ErrInFlight
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pendingMarker {
		return uuid.Nil, false, ErrInFlight
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency record %q: %w", k, err)
	}
	return id, false, nil
}

// Complete stores the id of the transaction the key produced.
func (s *Store) Complete(ctx context.Context, ownerID uuid.UUID, idemKey string, transactionID uuid.UUID) error {
	return s.rdb.Set(ctx, key(ownerID, idemKey), transactionID.String(), s.ttl).Err()
}

// Release frees a key whose request failed so the client can retry.
func (s *Store) Release(ctx context.Context, ownerID uuid.UUID, idemKey string) error {
	return s.rdb.Del(ctx, key(ownerID, idemKey)).Err()
}
