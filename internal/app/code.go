package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// UnknownCreator replaces creator names that cannot be resolved.
const UnknownCreator = "Unknown"

// SanitizeCode keeps only digits and caps the result at six characters.
func SanitizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == domain.AccessCodeLength {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CodeValidator resolves an access code to its share record, quiz and creator name.
type CodeValidator struct {
	shares   ShareFinder
	creators CreatorDirectory
	timeout  time.Duration
}

func NewCodeValidator(shares ShareFinder, creators CreatorDirectory, timeout time.Duration) *CodeValidator {
	return &CodeValidator{shares: shares, creators: creators, timeout: timeout}
}

// Validate never issues a lookup unless the sanitized code has exactly six digits.
func (v *CodeValidator) Validate(ctx context.Context, raw string) (domain.ResolvedQuiz, error) {
	code := SanitizeCode(raw)
	if len(code) != domain.AccessCodeLength {
		return domain.ResolvedQuiz{}, domain.ErrInvalidCodeLength
	}

	share, err := withTimeout(ctx, v.timeout, func(ctx context.Context) (domain.ShareRecord, error) {
		return v.shares.FindShareByCode(ctx, code)
	})
	if err != nil {
		return domain.ResolvedQuiz{}, err
	}
	if share.Quiz.ID == "" {
		share.Quiz.ID = share.QuizID
	}

	return domain.ResolvedQuiz{
		Quiz:        share.Quiz,
		Share:       share,
		CreatorName: v.creatorName(ctx, share.Quiz.CreatedBy),
	}, nil
}

func (v *CodeValidator) creatorName(ctx context.Context, creatorRef string) string {
	if v.creators == nil || creatorRef == "" {
		return UnknownCreator
	}
	name, err := withTimeout(ctx, v.timeout, func(ctx context.Context) (string, error) {
		return v.creators.FindDisplayNameByCreator(ctx, creatorRef)
	})
	if err == nil && strings.TrimSpace(name) == "" {
		err = domain.ErrCreatorNameUnresolved
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("creator name for %q unresolved: %v", creatorRef, err)
		}
		return UnknownCreator
	}
	return name
}
