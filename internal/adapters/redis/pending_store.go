package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// DefaultPendingTTL bounds how long a sign-in may sit between raising a
// challenge and answering it. Provider challenge sessions expire on a
// similar horizon, so keeping entries longer would only serve stale state.
const DefaultPendingTTL = 5 * time.Minute

// PendingStore parks challenge continuations in Redis between the sign-in
// call that raised them and the follow-up that answers them.
type PendingStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewPendingStore creates a pending-challenge store with the default prefix
// and TTL.
func NewPendingStore(client redis.UniversalClient) *PendingStore {
	return &PendingStore{
		client: client,
		prefix: "pending:",
		ttl:    DefaultPendingTTL,
	}
}

var _ ports.PendingChallengeStore = (*PendingStore)(nil)

func (s *PendingStore) SavePending(ctx context.Context, token string, pending domainauth.PendingChallenge) error {
	if token == "" {
		return errors.New("challenge token cannot be empty")
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending challenge: %w", err)
	}
	return s.client.Set(ctx, s.prefix+token, data, s.ttl).Err()
}

func (s *PendingStore) GetPending(ctx context.Context, token string) (domainauth.PendingChallenge, error) {
	if token == "" {
		return domainauth.PendingChallenge{}, apperrors.NotFound("pending challenge not found")
	}
	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.PendingChallenge{}, apperrors.NotFound("pending challenge not found")
		}
		return domainauth.PendingChallenge{}, fmt.Errorf("redis get: %w", err)
	}
	var pending domainauth.PendingChallenge
	if unmarshalErr := json.Unmarshal([]byte(data), &pending); unmarshalErr != nil {
		return domainauth.PendingChallenge{}, fmt.Errorf("unmarshal pending challenge: %w", unmarshalErr)
	}
	return pending, nil
}

func (s *PendingStore) DeletePending(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+token).Err()
}
