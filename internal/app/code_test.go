package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/domain"
)

func TestSanitizeCode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"123456", "123456"},
		{"12 34-56", "123456"},
		{"1234567", "123456"},
		{"abc", ""},
		{"٣12", "12"},
	}
	for _, tc := range cases {
		if got := app.SanitizeCode(tc.raw); got != tc.want {
			t.Fatalf("SanitizeCode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestValidateNeverLooksUpWrongLength(t *testing.T) {
	shares := newFakeShares()
	validator := app.NewCodeValidator(shares, nil, time.Second)
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		n := rnd.Intn(6)
		raw := make([]byte, 0, n+3)
		for j := 0; j < n; j++ {
			raw = append(raw, byte('0'+rnd.Intn(10)))
		}
		raw = append(raw, " x-"[:rnd.Intn(4)]...)
		if _, err := validator.Validate(context.Background(), string(raw)); !errors.Is(err, domain.ErrInvalidCodeLength) {
			t.Fatalf("Validate(%q) = %v, want ErrInvalidCodeLength", raw, err)
		}
	}
	if shares.count() != 0 {
		t.Fatalf("expected no lookups, got %d", shares.count())
	}
}

func TestValidateFallsBackToUnknownCreator(t *testing.T) {
	share := openShare("123456", "share-1", "quiz-1")
	cases := []struct {
		name     string
		creators app.CreatorDirectory
	}{
		{name: "lookup error", creators: fakeCreators{err: errors.New("profiles down")}},
		{name: "missing profile", creators: fakeCreators{names: map[string]string{}}},
		{name: "blank name", creators: fakeCreators{names: map[string]string{"ana@example.com": "  "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validator := app.NewCodeValidator(newFakeShares(share), tc.creators, time.Second)
			resolved, err := validator.Validate(context.Background(), "123456")
			if err != nil {
				t.Fatalf("creator failures must not fail validation: %v", err)
			}
			if resolved.CreatorName != app.UnknownCreator {
				t.Fatalf("expected %q, got %q", app.UnknownCreator, resolved.CreatorName)
			}
		})
	}
}

func TestValidateFillsQuizIDFromShare(t *testing.T) {
	share := domain.ShareRecord{ID: "share-1", AccessCode: "123456", QuizID: "quiz-1"}
	validator := app.NewCodeValidator(newFakeShares(share), nil, time.Second)

	resolved, err := validator.Validate(context.Background(), "123456")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resolved.Quiz.ID != "quiz-1" {
		t.Fatalf("expected quiz id from share, got %q", resolved.Quiz.ID)
	}
}
