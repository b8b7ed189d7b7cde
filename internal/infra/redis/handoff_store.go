package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyguru-quiz-service/internal/domain"
)

// HandoffStore keeps attempt handoffs in Redis so any instance can redeem a ticket.
// Tickets are stored as: SET handoff:{ticket} {handoff} EX ttl
type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	return &HandoffStore{client: client, ttl: ttl}
}

func (s *HandoffStore) Put(ctx context.Context, handoff domain.AttemptHandoff) (string, error) {
	payload, err := json.Marshal(handoff)
	if err != nil {
		return "", fmt.Errorf("encode handoff: %w", err)
	}
	ticket := uuid.NewString()
	if err := s.client.Set(ctx, handoffKey(ticket), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store handoff: %w", err)
	}
	return ticket, nil
}

// Take redeems a ticket atomically; a second Take of the same ticket fails.
func (s *HandoffStore) Take(ctx context.Context, ticket string) (domain.AttemptHandoff, error) {
	raw, err := s.client.GetDel(ctx, handoffKey(ticket)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AttemptHandoff{}, domain.ErrHandoffNotFound
	}
	if err != nil {
		return domain.AttemptHandoff{}, fmt.Errorf("take handoff: %w", err)
	}
	var handoff domain.AttemptHandoff
	if err := json.Unmarshal(raw, &handoff); err != nil {
		return domain.AttemptHandoff{}, fmt.Errorf("decode handoff: %w", err)
	}
	return handoff, nil
}

func handoffKey(ticket string) string {
	return "handoff:" + ticket
}
