package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/auth"
	"studyguru-quiz-service/internal/config"
	"studyguru-quiz-service/internal/domain"
)

// NewJoinCmd joins a shared quiz from the terminal.
func NewJoinCmd(configPath *string) *cobra.Command {
	var code, token string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a shared quiz with a 6-digit access code",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.close()
			return runJoin(cmd.Context(), b, newTerminal(cmd.InOrStdin(), cmd.OutOrStdout()), code, token)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "access code (prompted when empty)")
	cmd.Flags().StringVar(&token, "token", "", "access token of a signed-in user")
	return cmd
}

func runJoin(ctx context.Context, b *backend, term *terminal, code, token string) error {
	var sessions app.SessionProvider
	if b.verifier != nil && token != "" {
		sessions = auth.NewTokenSession(b.verifier, token)
	}
	starter := app.AttemptStarterFunc(func(ctx context.Context, handoff domain.AttemptHandoff) error {
		ticket, err := b.handoffs.Put(ctx, handoff)
		if err != nil {
			return err
		}
		term.printf("\nStarting quiz %s (share %s)\nAttempt ticket: %s\n", handoff.QuizID, handoff.SharedQuizID, ticket)
		return nil
	})
	flow := app.NewAdmission(
		app.NewCodeValidator(b.shares, b.store, b.timeout),
		app.NewIdentityResolver(sessions, term, b.prompt, b.timeout),
		starter,
		app.WithTimeFormat(b.format),
	)
	defer flow.Close()

	for {
		snap := flow.Snapshot()
		if snap.State == app.StateAdmitted {
			return nil
		}
		if snap.Resolved == nil {
			if code == "" {
				line, err := term.readLine("Access code: ")
				if err != nil {
					return nil
				}
				code = line
			}
			err := flow.SubmitCode(ctx, code)
			code = ""
			if err != nil {
				term.Notify(ctx, app.NoticeFor(err))
				continue
			}
			printResolved(term, flow.Snapshot().Resolved)
		}

		answer, err := term.readLine("Start quiz? [y]es / [r]eset / [q]uit: ")
		if err != nil {
			return nil
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			if _, err := flow.Start(ctx); err != nil {
				if notice := flow.Snapshot().Notice; notice != nil {
					term.Notify(ctx, *notice)
				} else {
					term.Notify(ctx, app.NoticeFor(err))
				}
			}
		case "r", "reset":
			_ = flow.Reset()
		case "q", "quit":
			return nil
		}
	}
}

func printResolved(term *terminal, r *domain.ResolvedQuiz) {
	if r == nil {
		return
	}
	term.printf("\n%s\n", r.Quiz.Title)
	if r.Quiz.Description != "" {
		term.printf("%s\n", r.Quiz.Description)
	}
	term.printf("By %s · %s · %s · %d questions\n\n", r.CreatorName, r.Quiz.Category, r.Quiz.Difficulty, r.Quiz.NumberOfQuestions)
}

// terminal prompts on a line-oriented stream. An empty stream or "/cancel" dismisses a prompt.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out}
}

func (t *terminal) Prompt(ctx context.Context, cfg app.PromptConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.printf("%s\n%s\n", cfg.Title, cfg.Message)
	line, err := t.readLine(cfg.Placeholder + ": ")
	if err != nil || line == "/cancel" {
		return "", app.ErrPromptCancelled
	}
	return line, nil
}

func (t *terminal) Notify(_ context.Context, notice domain.Notice) {
	t.printf("[%s] %s: %s\n", notice.Severity, notice.Title, notice.Message)
}

func (t *terminal) readLine(label string) (string, error) {
	t.printf("%s", label)
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}
