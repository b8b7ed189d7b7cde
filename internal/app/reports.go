package app

import (
	"context"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// Reports lists an owner's share records with their current status.
type Reports struct {
	shares   ShareLister
	attempts AttemptLister
	now      func() time.Time
	timeout  time.Duration
}

func NewReports(shares ShareLister, attempts AttemptLister, timeout time.Duration) *Reports {
	return &Reports{shares: shares, attempts: attempts, now: time.Now, timeout: timeout}
}

// NewReportsWithClock is used by tests for deterministic statuses.
func NewReportsWithClock(shares ShareLister, attempts AttemptLister, timeout time.Duration, now func() time.Time) *Reports {
	return &Reports{shares: shares, attempts: attempts, now: now, timeout: timeout}
}

func (r *Reports) List(ctx context.Context, owner string) ([]domain.ShareSummary, error) {
	summaries, err := withTimeout(ctx, r.timeout, func(ctx context.Context) ([]domain.ShareSummary, error) {
		return r.shares.ListSharesByOwner(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	now := r.now()
	for i := range summaries {
		s := &summaries[i]
		s.Status = Classify(domain.ShareRecord{StartAt: s.StartAt, ExpiresAt: s.ExpiresAt}, now)
		s.StatusLabel = s.Status.Label()
		if s.QuizTitle == "" {
			s.QuizTitle = "Unknown Quiz"
		}
	}
	return summaries, nil
}

// Detail returns one of the owner's shares with its participants, newest attempt first.
func (r *Reports) Detail(ctx context.Context, owner, shareID string) (domain.ShareReport, error) {
	summaries, err := r.List(ctx, owner)
	if err != nil {
		return domain.ShareReport{}, err
	}
	var report domain.ShareReport
	found := false
	for _, s := range summaries {
		if s.ID == shareID {
			report.ShareSummary = s
			found = true
			break
		}
	}
	if !found {
		return domain.ShareReport{}, domain.ErrShareNotFound
	}

	report.Attempts, err = withTimeout(ctx, r.timeout, func(ctx context.Context) ([]domain.AttemptRecord, error) {
		return r.attempts.ListAttemptsByShare(ctx, owner, shareID)
	})
	if err != nil {
		return domain.ShareReport{}, err
	}
	if report.Attempts == nil {
		report.Attempts = []domain.AttemptRecord{}
	}
	return report, nil
}
