package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gofunds/internal/usecase"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "gofunds:idempotency:",
	}
}

// Reserve stores an in-flight record with SET NX. If the key is taken the existing record is returned.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (bool, *usecase.IdempotencyRecord, error) {
	placeholder, err := json.Marshal(usecase.IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return false, nil, err
	}

	set, err := s.client.SetNX(ctx, s.prefix+key, placeholder, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if set {
		return true, nil, nil
	}

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Reserve(ctx, key, fingerprint, ttl)
	}
	if err != nil {
		return false, nil, fmt.Errorf("load idempotency key: %w", err)
	}

	var rec usecase.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return false, nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return false, &rec, nil
}

// Complete overwrites the reservation with the final response.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, record usecase.IdempotencyRecord, ttl time.Duration) error {
	record.Completed = true
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
}

// Release deletes the reservation.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
