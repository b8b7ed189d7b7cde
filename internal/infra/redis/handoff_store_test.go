package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"studyguru-quiz-service/internal/domain"
)

func TestHandoffStoreRedeemsOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewHandoffStore(newClient(mr), time.Minute)
	ctx := context.Background()
	handoff := domain.AttemptHandoff{QuizID: "quiz-1", SharedQuizID: "share-1", GuestName: "Alice"}

	ticket, err := store.Put(ctx, handoff)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := mr.TTL("handoff:" + ticket); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	got, err := store.Take(ctx, ticket)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got != handoff {
		t.Fatalf("expected %+v, got %+v", handoff, got)
	}
	if _, err := store.Take(ctx, ticket); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected ErrHandoffNotFound on second take, got %v", err)
	}
}

func TestHandoffStoreUnknownTicket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewHandoffStore(newClient(mr), time.Minute)
	if _, err := store.Take(context.Background(), "missing"); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected ErrHandoffNotFound, got %v", err)
	}
}
