package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"studyguru-quiz-service/internal/domain"
)

func (e *testEnv) do(t *testing.T, method, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListQuizzesProjects(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/quizzes?sort=popularity", "")
	var body quizListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Quizzes) != 2 || body.Quizzes[0].ID != "quiz-2" {
		t.Fatalf("expected popularity order, got %+v", body.Quizzes)
	}
	if body.Quizzes[0].CreatorName != "Ana Lima" {
		t.Fatalf("expected creator name, got %q", body.Quizzes[0].CreatorName)
	}

	resp = env.do(t, http.MethodGet, "/api/quizzes?category=Science&search=cell", "")
	body = quizListResponse{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Quizzes) != 1 || body.Quizzes[0].ID != "quiz-1" || body.Total != 2 {
		t.Fatalf("unexpected filtered list %+v", body)
	}
}

func TestFilterOptions(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/quizzes/options", "")
	var opts domain.FilterOptions
	_ = json.NewDecoder(resp.Body).Decode(&opts)
	if len(opts.Categories) != 3 || opts.Categories[0] != domain.AllOption {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestLibraryRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	if resp := env.do(t, http.MethodGet, "/api/library", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodGet, "/api/reports", "garbage"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLibraryPublishAndDelete(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.verifier.Sign("user-ana", "ana@example.com", time.Hour)

	resp := env.do(t, http.MethodPost, "/api/library/quiz-1/publish", token)
	var toggled struct {
		ID          string `json:"id"`
		IsPublished bool   `json:"isPublished"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&toggled)
	if resp.StatusCode != http.StatusOK || toggled.IsPublished {
		t.Fatalf("expected quiz-1 unpublished, got %d %+v", resp.StatusCode, toggled)
	}

	if resp := env.do(t, http.MethodDelete, "/api/library/quiz-2", token); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodDelete, "/api/library/quiz-2", token); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted quiz, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/library", token)
	var quizzes []domain.Quiz
	_ = json.NewDecoder(resp.Body).Decode(&quizzes)
	if len(quizzes) != 1 || quizzes[0].IsPublished {
		t.Fatalf("unexpected library %+v", quizzes)
	}
}

func TestReportsStatus(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.verifier.Sign("user-ana", "ana@example.com", time.Hour)

	resp := env.do(t, http.MethodGet, "/api/reports", token)
	var rows []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&rows)
	statuses := map[string]string{}
	for _, row := range rows {
		statuses[row.ID] = row.Status
	}
	if statuses["share-1"] != "Active" || statuses["share-2"] != "Expired" {
		t.Fatalf("unexpected statuses %v", statuses)
	}
}

func TestReportDetail(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.verifier.Sign("user-ana", "ana@example.com", time.Hour)

	resp := env.do(t, http.MethodGet, "/api/reports/share-1", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var report domain.ShareReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ID != "share-1" || report.StatusLabel != "Active" || report.ParticipantCount != 1 {
		t.Fatalf("unexpected summary %+v", report.ShareSummary)
	}
	if len(report.Attempts) != 1 || report.Attempts[0].FullName != "Alice" || report.Attempts[0].Score != 8 {
		t.Fatalf("unexpected participants %+v", report.Attempts)
	}

	other, _ := env.verifier.Sign("user-bo", "bo@example.com", time.Hour)
	if resp := env.do(t, http.MethodGet, "/api/reports/share-1", other); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodGet, "/api/reports/share-1", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestDeleteQuizEvictsCachedCode(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.verifier.Sign("user-ana", "ana@example.com", time.Hour)
	ctx := context.Background()

	if _, err := env.shares.FindShareByCode(ctx, "123456"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if resp := env.do(t, http.MethodDelete, "/api/library/quiz-1", token); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if _, err := env.shares.FindShareByCode(ctx, "123456"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected code of deleted quiz to stop resolving, got %v", err)
	}
}
