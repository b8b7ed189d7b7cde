package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/config"
	"studyguru-quiz-service/internal/infra/memory"
)

func demoBackend(t *testing.T) *backend {
	t.Helper()
	store := memory.NewStore(demoSeed(time.Now()))
	return &backend{
		store:    store,
		shares:   memory.NewShareCache(store, time.Minute),
		handoffs: memory.NewHandoffStore(time.Minute),
		timeout:  time.Second,
		prompt:   app.DefaultGuestPrompt(),
		close:    func() {},
	}
}

func TestJoinGuestFromTerminal(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("12345\n123456\ny\n\n  Alice  \n")

	if err := runJoin(context.Background(), demoBackend(t), newTerminal(in, &out), "", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Please enter a valid 6-digit access code.",
		"Cell Biology Basics",
		"By Ana Lima",
		"Name is required",
		"Attempt ticket: ",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestJoinExpiredCodeIsRefused(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("y\nq\n")

	if err := runJoin(context.Background(), demoBackend(t), newTerminal(in, &out), "333333", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !strings.Contains(out.String(), "This quiz expired on:") {
		t.Fatalf("expected expiry notice, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Enter Your Name") {
		t.Fatalf("expired join must not prompt for a name")
	}
}

func TestDiscoverSortsAndFilters(t *testing.T) {
	b := demoBackend(t)
	catalog := app.NewCatalog(b.store, b.store, time.Second)

	var out bytes.Buffer
	f := discoverFlags{category: "All", difficulty: "All", quizType: "All", sort: "popularity"}
	if err := runDiscover(context.Background(), catalog, f, &out); err != nil {
		t.Fatalf("discover: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[1], "Linear Equations") {
		t.Fatalf("expected popularity order, got:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "Anonymous") {
		t.Fatalf("expected anonymous creator fallback, got %q", lines[1])
	}

	out.Reset()
	f = discoverFlags{search: "sonnet", category: "All", difficulty: "All", quizType: "All"}
	if err := runDiscover(context.Background(), catalog, f, &out); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if !strings.Contains(out.String(), "Sonnet Forms") || strings.Contains(out.String(), "Linear") {
		t.Fatalf("unexpected search result:\n%s", out.String())
	}
}

func TestPromptFromConfig(t *testing.T) {
	cfg := config.Config{}
	cfg.Admission.Prompt.Title = "Who is playing?"
	prompt := promptFromConfig(cfg)
	if prompt.Title != "Who is playing?" || prompt.Message != app.DefaultGuestPrompt().Message {
		t.Fatalf("unexpected prompt %+v", prompt)
	}
}
