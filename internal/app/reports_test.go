package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/domain"
	"studyguru-quiz-service/internal/infra/memory"
)

func TestReportsStatus(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	store := memory.NewStore(memory.Seed{
		Quizzes: []domain.Quiz{{ID: "quiz-1", Title: "Cell Biology", CreatedBy: "ana@example.com"}},
		Shares: []domain.ShareRecord{
			{ID: "s-active", QuizID: "quiz-1", CreatedBy: "ana@example.com", CreatedAt: testNow.Add(-3 * time.Hour)},
			{ID: "s-expired", QuizID: "quiz-1", CreatedBy: "ana@example.com", ExpiresAt: &past, CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: "s-scheduled", QuizID: "gone", CreatedBy: "ana@example.com", StartAt: &future, CreatedAt: testNow.Add(-time.Hour)},
		},
		Attempts: []domain.AttemptRecord{
			{ID: "a1", SharedQuizID: "s-active", QuizID: "quiz-1", FullName: "Alice", Score: 4, CreatedAt: testNow.Add(-150 * time.Minute)},
			{ID: "a2", SharedQuizID: "s-active", QuizID: "quiz-1", FullName: "Bob", Score: 6, CreatedAt: testNow.Add(-140 * time.Minute)},
			{ID: "a3", SharedQuizID: "s-active", QuizID: "quiz-1", FullName: "Cy", Score: 5, CreatedAt: testNow.Add(-130 * time.Minute)},
		},
	})
	reports := app.NewReportsWithClock(store, store, time.Second, func() time.Time { return testNow })

	rows, err := reports.List(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]string{"s-active": "Active", "s-expired": "Expired", "s-scheduled": "Scheduled"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for _, row := range rows {
		if row.StatusLabel != want[row.ID] {
			t.Fatalf("%s: status %q, want %q", row.ID, row.StatusLabel, want[row.ID])
		}
	}
	if rows[0].ID != "s-scheduled" || rows[0].QuizTitle != "Unknown Quiz" {
		t.Fatalf("expected newest first with title fallback, got %+v", rows[0])
	}
	if rows[2].ParticipantCount != 3 {
		t.Fatalf("expected participant count, got %d", rows[2].ParticipantCount)
	}
}

func TestReportDetailListsParticipants(t *testing.T) {
	store := memory.NewStore(memory.Seed{
		Quizzes: []domain.Quiz{{ID: "quiz-1", Title: "Cell Biology", CreatedBy: "ana@example.com"}},
		Shares: []domain.ShareRecord{
			{ID: "s-1", AccessCode: "123456", QuizID: "quiz-1", CreatedBy: "ana@example.com", CreatedAt: testNow.Add(-time.Hour)},
			{ID: "s-2", AccessCode: "654321", QuizID: "quiz-1", CreatedBy: "ana@example.com", CreatedAt: testNow.Add(-time.Hour)},
		},
		Attempts: []domain.AttemptRecord{
			{ID: "a1", SharedQuizID: "s-1", QuizID: "quiz-1", FullName: "Alice", Score: 4, CreatedAt: testNow.Add(-30 * time.Minute)},
			{ID: "a2", SharedQuizID: "s-1", QuizID: "quiz-1", FullName: "Bob", Score: 6, CreatedAt: testNow.Add(-10 * time.Minute)},
		},
	})
	reports := app.NewReportsWithClock(store, store, time.Second, func() time.Time { return testNow })
	ctx := context.Background()

	report, err := reports.Detail(ctx, "ana@example.com", "s-1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if report.StatusLabel != "Active" || report.ParticipantCount != 2 || report.QuizTitle != "Cell Biology" {
		t.Fatalf("unexpected summary %+v", report.ShareSummary)
	}
	if len(report.Attempts) != 2 || report.Attempts[0].FullName != "Bob" {
		t.Fatalf("expected newest attempt first, got %+v", report.Attempts)
	}

	empty, err := reports.Detail(ctx, "ana@example.com", "s-2")
	if err != nil || empty.Attempts == nil || len(empty.Attempts) != 0 {
		t.Fatalf("expected empty participant list, got %+v (%v)", empty.Attempts, err)
	}
	if _, err := reports.Detail(ctx, "ben@example.com", "s-1"); !errors.Is(err, domain.ErrShareNotFound) {
		t.Fatalf("expected ErrShareNotFound for another owner, got %v", err)
	}
}
