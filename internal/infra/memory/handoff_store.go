package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyguru-quiz-service/internal/domain"
)

// HandoffStore is an in-memory implementation of app.HandoffStore.
type HandoffStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	tickets map[string]pendingHandoff
}

type pendingHandoff struct {
	handoff   domain.AttemptHandoff
	expiresAt time.Time
}

func NewHandoffStore(ttl time.Duration) *HandoffStore {
	return &HandoffStore{
		ttl:     ttl,
		clock:   time.Now,
		tickets: make(map[string]pendingHandoff),
	}
}

func (s *HandoffStore) Put(_ context.Context, handoff domain.AttemptHandoff) (string, error) {
	ticket := uuid.NewString()
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.tickets {
		if !entry.expiresAt.After(now) {
			delete(s.tickets, key)
		}
	}
	s.tickets[ticket] = pendingHandoff{handoff: handoff, expiresAt: now.Add(s.ttl)}
	return ticket, nil
}

// Take redeems a ticket. A ticket can be taken once.
func (s *HandoffStore) Take(_ context.Context, ticket string) (domain.AttemptHandoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tickets[ticket]
	if !ok {
		return domain.AttemptHandoff{}, domain.ErrHandoffNotFound
	}
	delete(s.tickets, ticket)
	if !entry.expiresAt.After(s.clock()) {
		return domain.AttemptHandoff{}, domain.ErrHandoffNotFound
	}
	return entry.handoff, nil
}
