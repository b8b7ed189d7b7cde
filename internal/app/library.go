package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// Library is an owner's view of the quizzes they created.
type Library struct {
	store   OwnerLibrary
	evictor ShareEvictor
	owner   string
	timeout time.Duration
	list    OptimisticList[domain.Quiz]
}

func NewLibrary(store OwnerLibrary, owner string, timeout time.Duration) *Library {
	return &Library{store: store, owner: owner, timeout: timeout}
}

// NewLibraryWithEvictor also drops cached share lookups of the quizzes it deletes.
func NewLibraryWithEvictor(store OwnerLibrary, evictor ShareEvictor, owner string, timeout time.Duration) *Library {
	return &Library{store: store, evictor: evictor, owner: owner, timeout: timeout}
}

func (l *Library) Load(ctx context.Context) error {
	quizzes, err := withTimeout(ctx, l.timeout, func(ctx context.Context) ([]domain.Quiz, error) {
		return l.store.ListQuizzesByOwner(ctx, l.owner)
	})
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}
	l.list.Replace(quizzes)
	return nil
}

func (l *Library) Quizzes() []domain.Quiz {
	return l.list.Items()
}

// TogglePublish flips the publish flag; the list reverts if the store rejects the change.
func (l *Library) TogglePublish(ctx context.Context, quizID string) (bool, error) {
	current, ok := l.find(quizID)
	if !ok {
		return false, domain.ErrQuizNotFound
	}
	next := !current.IsPublished

	err := l.list.Apply(ctx,
		func(items []domain.Quiz) []domain.Quiz {
			for i := range items {
				if items[i].ID == quizID {
					items[i].IsPublished = next
				}
			}
			return items
		},
		func(ctx context.Context) error {
			_, err := withTimeout(ctx, l.timeout, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, l.store.SetPublished(ctx, l.owner, quizID, next)
			})
			return err
		},
	)
	if err != nil {
		return current.IsPublished, fmt.Errorf("update publish status: %w", err)
	}
	return next, nil
}

// Delete removes a quiz; the list reverts if the store rejects the deletion.
func (l *Library) Delete(ctx context.Context, quizID string) error {
	if _, ok := l.find(quizID); !ok {
		return domain.ErrQuizNotFound
	}
	err := l.list.Apply(ctx,
		func(items []domain.Quiz) []domain.Quiz {
			kept := items[:0]
			for _, q := range items {
				if q.ID != quizID {
					kept = append(kept, q)
				}
			}
			return kept
		},
		func(ctx context.Context) error {
			_, err := withTimeout(ctx, l.timeout, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, l.store.DeleteQuiz(ctx, l.owner, quizID)
			})
			if err == nil && l.evictor != nil {
				if evictErr := l.evictor.EvictQuiz(ctx, quizID); evictErr != nil {
					log.Printf("evict cached shares of quiz %s: %v", quizID, evictErr)
				}
			}
			return err
		},
	)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (l *Library) find(quizID string) (domain.Quiz, bool) {
	for _, q := range l.list.Items() {
		if q.ID == quizID {
			return q, true
		}
	}
	return domain.Quiz{}, false
}
