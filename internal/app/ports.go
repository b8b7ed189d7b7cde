package app

import (
	"context"

	"studyguru-quiz-service/internal/domain"
)

// ShareFinder looks up share records by access code.
// Implementations return domain.ErrCodeNotFound when zero or several records match.
type ShareFinder interface {
	FindShareByCode(ctx context.Context, code string) (domain.ShareRecord, error)
}

// CreatorDirectory resolves quiz creators to display names.
type CreatorDirectory interface {
	FindDisplayNameByCreator(ctx context.Context, creatorRef string) (string, error)
	ResolveCreatorNames(ctx context.Context, creatorRefs []string) (map[string]string, error)
}

// SessionProvider reports the caller's authenticated session, or nil when there is none.
type SessionProvider interface {
	GetCurrentSession(ctx context.Context) (*domain.Session, error)
}

// QuizSource lists quizzes eligible for discovery.
type QuizSource interface {
	ListPublishedQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// OwnerLibrary manages the quizzes a user created.
type OwnerLibrary interface {
	ListQuizzesByOwner(ctx context.Context, owner string) ([]domain.Quiz, error)
	SetPublished(ctx context.Context, owner, quizID string, published bool) error
	DeleteQuiz(ctx context.Context, owner, quizID string) error
}

// ShareLister lists the share records a user created.
type ShareLister interface {
	ListSharesByOwner(ctx context.Context, owner string) ([]domain.ShareSummary, error)
}

// AttemptStarter receives the handoff of an admitted attempt.
type AttemptStarter interface {
	StartAttempt(ctx context.Context, handoff domain.AttemptHandoff) error
}

// AttemptStarterFunc adapts a function to AttemptStarter.
type AttemptStarterFunc func(ctx context.Context, handoff domain.AttemptHandoff) error

func (f AttemptStarterFunc) StartAttempt(ctx context.Context, handoff domain.AttemptHandoff) error {
	return f(ctx, handoff)
}

// HandoffStore issues one-time tickets the attempt screen redeems for a handoff.
type HandoffStore interface {
	Put(ctx context.Context, handoff domain.AttemptHandoff) (string, error)
	Take(ctx context.Context, ticket string) (domain.AttemptHandoff, error)
}

// ShareEvictor drops cached share lookups that point at a quiz.
type ShareEvictor interface {
	EvictQuiz(ctx context.Context, quizID string) error
}

// AttemptLister lists the attempts recorded against a share the owner created.
// Implementations return domain.ErrShareNotFound when the share is unknown or owned by someone else.
type AttemptLister interface {
	ListAttemptsByShare(ctx context.Context, owner, shareID string) ([]domain.AttemptRecord, error)
}
