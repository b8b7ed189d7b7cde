package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"studyguru-quiz-service/internal/domain"
)

// ErrPromptCancelled is returned by a Prompter when the user dismisses the prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// PromptConfig describes the guest name prompt.
type PromptConfig struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	Placeholder string `json:"placeholder"`
}

// DefaultGuestPrompt is shown when no session exists.
func DefaultGuestPrompt() PromptConfig {
	return PromptConfig{
		Title:       "Enter Your Name",
		Message:     "Please enter your name to attempt the quiz",
		Placeholder: "Your name",
	}
}

// Prompter shows one prompt at a time and blocks until it is submitted or cancelled.
type Prompter interface {
	Prompt(ctx context.Context, cfg PromptConfig) (string, error)
	Notify(ctx context.Context, notice domain.Notice)
}

// IdentityResolver decides who is attempting the quiz.
type IdentityResolver struct {
	sessions SessionProvider
	prompter Prompter
	prompt   PromptConfig
	timeout  time.Duration
}

func NewIdentityResolver(sessions SessionProvider, prompter Prompter, prompt PromptConfig, timeout time.Duration) *IdentityResolver {
	return &IdentityResolver{sessions: sessions, prompter: prompter, prompt: prompt, timeout: timeout}
}

// Resolve returns the authenticated identity when a session exists and otherwise asks for a
// guest name until a non-blank one is submitted. A dismissed prompt yields ErrPromptCancelled.
func (r *IdentityResolver) Resolve(ctx context.Context) (domain.Identity, error) {
	if session := r.currentSession(ctx); session != nil {
		return domain.Identity{Kind: domain.Authenticated, SessionRef: session.Ref}, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Identity{}, err
	}

	for {
		name, err := r.prompter.Prompt(ctx, r.prompt)
		if err != nil {
			return domain.Identity{}, err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			r.prompter.Notify(ctx, NoticeFor(domain.ErrNameRequired))
			continue
		}
		return domain.Identity{Kind: domain.Guest, DisplayName: name}, nil
	}
}

// currentSession folds check failures into "no session" after logging them.
func (r *IdentityResolver) currentSession(ctx context.Context) *domain.Session {
	if r.sessions == nil {
		return nil
	}
	session, err := withTimeout(ctx, r.timeout, r.sessions.GetCurrentSession)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("%v: routing to guest flow: %v", domain.ErrSessionCheckFailed, err)
		}
		return nil
	}
	return session
}
