package memory

import (
	"context"
	"sort"
	"sync"

	"studyguru-quiz-service/internal/domain"
)

// Seed is the initial content of a Store.
type Seed struct {
	Quizzes  []domain.Quiz
	Shares   []domain.ShareRecord
	Profiles map[string]string // creator email -> full name
	Attempts []domain.AttemptRecord
}

// Store is an in-memory backend (useful for tests/demos). It implements every port the
// join and discovery flows consume.
type Store struct {
	mu       sync.RWMutex
	quizzes  map[string]domain.Quiz
	order    []string
	shares   []domain.ShareRecord
	profiles map[string]string
	attempts []domain.AttemptRecord
}

func NewStore(seed Seed) *Store {
	s := &Store{
		quizzes:  make(map[string]domain.Quiz, len(seed.Quizzes)),
		shares:   append([]domain.ShareRecord(nil), seed.Shares...),
		profiles: make(map[string]string, len(seed.Profiles)),
		attempts: append([]domain.AttemptRecord(nil), seed.Attempts...),
	}
	for _, q := range seed.Quizzes {
		s.quizzes[q.ID] = q
		s.order = append(s.order, q.ID)
	}
	for k, v := range seed.Profiles {
		s.profiles[k] = v
	}
	return s
}

func (s *Store) FindShareByCode(_ context.Context, code string) (domain.ShareRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.ShareRecord
	for _, share := range s.shares {
		if share.AccessCode == code {
			matches = append(matches, share)
		}
	}
	if len(matches) != 1 {
		return domain.ShareRecord{}, domain.ErrCodeNotFound
	}
	share := matches[0]
	quiz, ok := s.quizzes[share.QuizID]
	if !ok {
		return domain.ShareRecord{}, domain.ErrCodeNotFound
	}
	share.Quiz = quiz
	return share, nil
}

func (s *Store) FindDisplayNameByCreator(_ context.Context, creatorRef string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.profiles[creatorRef]
	if !ok {
		return "", domain.ErrCreatorNameUnresolved
	}
	return name, nil
}

func (s *Store) ResolveCreatorNames(_ context.Context, creatorRefs []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make(map[string]string, len(creatorRefs))
	for _, ref := range creatorRefs {
		if name, ok := s.profiles[ref]; ok {
			names[ref] = name
		}
	}
	return names, nil
}

func (s *Store) ListPublishedQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		if q := s.quizzes[id]; q.IsPublished {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) ListQuizzesByOwner(_ context.Context, owner string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, id := range s.order {
		if q := s.quizzes[id]; q.CreatedBy == owner {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SetPublished(_ context.Context, owner, quizID string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[quizID]
	if !ok || q.CreatedBy != owner {
		return domain.ErrQuizNotFound
	}
	q.IsPublished = published
	s.quizzes[quizID] = q
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, owner, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[quizID]
	if !ok || q.CreatedBy != owner {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	for i, id := range s.order {
		if id == quizID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListSharesByOwner(_ context.Context, owner string) ([]domain.ShareSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ShareSummary
	for _, share := range s.shares {
		if share.CreatedBy != owner {
			continue
		}
		out = append(out, domain.ShareSummary{
			ID:               share.ID,
			AccessCode:       share.AccessCode,
			QuizID:           share.QuizID,
			QuizTitle:        s.quizzes[share.QuizID].Title,
			StartAt:          share.StartAt,
			ExpiresAt:        share.ExpiresAt,
			CreatedAt:        share.CreatedAt,
			ParticipantCount: s.countAttemptsLocked(share.ID),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListAttemptsByShare(_ context.Context, owner, shareID string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := false
	for _, share := range s.shares {
		if share.ID == shareID && share.CreatedBy == owner {
			owned = true
			break
		}
	}
	if !owned {
		return nil, domain.ErrShareNotFound
	}
	out := []domain.AttemptRecord{}
	for _, a := range s.attempts {
		if a.SharedQuizID == shareID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) countAttemptsLocked(shareID string) int {
	n := 0
	for _, a := range s.attempts {
		if a.SharedQuizID == shareID {
			n++
		}
	}
	return n
}
