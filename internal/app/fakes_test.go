package app_test

import (
	"context"
	"sync"
	"time"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeShares struct {
	mu      sync.Mutex
	records map[string]domain.ShareRecord
	gates   map[string]chan struct{}
	started chan string
	calls   int
}

func newFakeShares(records ...domain.ShareRecord) *fakeShares {
	f := &fakeShares{records: make(map[string]domain.ShareRecord), gates: make(map[string]chan struct{})}
	for _, r := range records {
		f.records[r.AccessCode] = r
	}
	return f
}

// hold makes lookups of code wait for the returned channel to close, ignoring cancellation.
func (f *fakeShares) hold(code string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[code] = gate
	if f.started == nil {
		f.started = make(chan string, 8)
	}
	f.mu.Unlock()
	return gate
}

func (f *fakeShares) FindShareByCode(_ context.Context, code string) (domain.ShareRecord, error) {
	f.mu.Lock()
	f.calls++
	gate, started := f.gates[code], f.started
	f.mu.Unlock()

	if gate != nil {
		started <- code
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[code]
	if !ok {
		return domain.ShareRecord{}, domain.ErrCodeNotFound
	}
	return record, nil
}

func (f *fakeShares) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingShares never answers before the context ends.
type blockingShares struct{}

func (blockingShares) FindShareByCode(ctx context.Context, _ string) (domain.ShareRecord, error) {
	<-ctx.Done()
	return domain.ShareRecord{}, ctx.Err()
}

type fakeCreators struct {
	names map[string]string
	err   error
}

func (f fakeCreators) FindDisplayNameByCreator(_ context.Context, ref string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[ref]
	if !ok {
		return "", domain.ErrCreatorNameUnresolved
	}
	return name, nil
}

func (f fakeCreators) ResolveCreatorNames(_ context.Context, refs []string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, ref := range refs {
		if name, ok := f.names[ref]; ok {
			out[ref] = name
		}
	}
	return out, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	session *domain.Session
	err     error
	calls   int
}

func (f *fakeSessions) GetCurrentSession(context.Context) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.session, f.err
}

type promptReply struct {
	name string
	err  error
}

type scriptedPrompter struct {
	mu      sync.Mutex
	replies []promptReply
	prompts []app.PromptConfig
	notices []domain.Notice
}

func (p *scriptedPrompter) Prompt(_ context.Context, cfg app.PromptConfig) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, cfg)
	if len(p.replies) == 0 {
		return "", app.ErrPromptCancelled
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply.name, reply.err
}

func (p *scriptedPrompter) Notify(_ context.Context, notice domain.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
}

func (p *scriptedPrompter) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type recordingStarter struct {
	mu       sync.Mutex
	handoffs []domain.AttemptHandoff
	err      error
}

func (s *recordingStarter) StartAttempt(_ context.Context, handoff domain.AttemptHandoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.handoffs = append(s.handoffs, handoff)
	return nil
}

func openShare(code, id, quizID string) domain.ShareRecord {
	return domain.ShareRecord{
		ID:         id,
		AccessCode: code,
		QuizID:     quizID,
		CreatedBy:  "ana@example.com",
		Quiz:       domain.Quiz{ID: quizID, Title: "Quiz " + quizID, CreatedBy: "ana@example.com"},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
