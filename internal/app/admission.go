package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"studyguru-quiz-service/internal/domain"
)

var (
	// ErrSuperseded is returned to a request whose result was discarded because a newer
	// request, a reset or a close happened while it was in flight.
	ErrSuperseded = errors.New("admission request superseded")
	// ErrAdmissionClosed is returned once the flow admitted an attempt or was closed.
	ErrAdmissionClosed = errors.New("admission closed")
	// ErrAdmissionBusy is returned when a start is already in progress.
	ErrAdmissionBusy = errors.New("admission busy")
	// ErrNoResolvedQuiz is returned when starting without a resolved code.
	ErrNoResolvedQuiz = errors.New("quiz details not found")
)

// State is the position of an admission flow.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateResolved
	StateCheckingAvailability
	StateBlocked
	StateAvailable
	StateResolvingIdentity
	StateAbandoned
	StateAdmitted
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateValidating:           "validating",
	StateInvalid:              "invalid",
	StateResolved:             "resolved",
	StateCheckingAvailability: "checking_availability",
	StateBlocked:              "blocked",
	StateAvailable:            "available",
	StateResolvingIdentity:    "resolving_identity",
	StateAbandoned:            "abandoned",
	StateAdmitted:             "admitted",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Snapshot is the visible state of an admission flow.
type Snapshot struct {
	State    State                  `json:"-"`
	Name     string                 `json:"state"`
	Code     string                 `json:"code"`
	Resolved *domain.ResolvedQuiz   `json:"resolved,omitempty"`
	Notice   *domain.Notice         `json:"notice,omitempty"`
	Handoff  *domain.AttemptHandoff `json:"handoff,omitempty"`
}

// AdmissionOption customizes an Admission.
type AdmissionOption func(*Admission)

// WithClock replaces time.Now for availability checks.
func WithClock(now func() time.Time) AdmissionOption {
	return func(a *Admission) { a.now = now }
}

// WithListener receives every transition in order. The listener runs while the flow is
// locked and must not call back into the Admission.
func WithListener(fn func(Snapshot)) AdmissionOption {
	return func(a *Admission) { a.onChange = fn }
}

// WithTimeFormat sets how availability timestamps are rendered.
func WithTimeFormat(f TimeFormat) AdmissionOption {
	return func(a *Admission) { a.format = f }
}

// Admission sequences code validation, the availability window and identity resolution
// for one join attempt. A fresh join needs a fresh Admission.
type Admission struct {
	validator *CodeValidator
	resolver  *IdentityResolver
	starter   AttemptStarter
	format    TimeFormat
	now       func() time.Time
	onChange  func(Snapshot)

	mu       sync.Mutex
	state    State
	code     string
	resolved *domain.ResolvedQuiz
	lastCode string
	notice   *domain.Notice
	handoff  *domain.AttemptHandoff
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
}

func NewAdmission(validator *CodeValidator, resolver *IdentityResolver, starter AttemptStarter, opts ...AdmissionOption) *Admission {
	a := &Admission{
		validator: validator,
		resolver:  resolver,
		starter:   starter,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Input records typed text. Reaching six digits submits the code.
func (a *Admission) Input(ctx context.Context, raw string) error {
	code := SanitizeCode(raw)

	a.mu.Lock()
	if err := a.acceptingLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.code = code
	a.publishLocked()
	a.mu.Unlock()

	if len(code) == domain.AccessCodeLength {
		return a.submit(ctx, code)
	}
	return nil
}

// Submit validates the code entered so far.
func (a *Admission) Submit(ctx context.Context) error {
	a.mu.Lock()
	code := a.code
	a.mu.Unlock()
	return a.submit(ctx, code)
}

// SubmitCode validates a code supplied from outside the input, such as a deep link.
func (a *Admission) SubmitCode(ctx context.Context, raw string) error {
	code := SanitizeCode(raw)
	a.mu.Lock()
	if err := a.acceptingLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.code = code
	a.mu.Unlock()
	return a.submit(ctx, code)
}

func (a *Admission) submit(ctx context.Context, code string) error {
	a.mu.Lock()
	if err := a.acceptingLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	if a.state == StateResolved && a.resolved != nil && a.lastCode == code {
		a.mu.Unlock()
		return nil
	}
	if len(code) != domain.AccessCodeLength {
		a.invalidateLocked()
		a.resolved = nil
		a.lastCode = ""
		a.failLocked(domain.ErrInvalidCodeLength)
		a.mu.Unlock()
		return domain.ErrInvalidCodeLength
	}

	gen, reqCtx := a.beginLocked(ctx)
	a.code = code
	a.resolved = nil
	a.lastCode = ""
	a.notice = nil
	a.setLocked(StateValidating)
	a.mu.Unlock()

	resolved, err := a.validator.Validate(reqCtx, code)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.currentLocked(gen) {
		log.Printf("discarding stale validation for code %s", code)
		return ErrSuperseded
	}
	a.finishLocked()
	if err != nil {
		a.failLocked(err)
		return err
	}
	a.resolved = &resolved
	a.lastCode = code
	a.setLocked(StateResolved)
	return nil
}

// Start checks the availability window, resolves the identity and hands the attempt off.
// It returns a nil handoff without error when the guest prompt is cancelled.
func (a *Admission) Start(ctx context.Context) (*domain.AttemptHandoff, error) {
	a.mu.Lock()
	if err := a.acceptingLocked(); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if a.state != StateResolved || a.resolved == nil {
		a.noticeLocked(ErrNoResolvedQuiz)
		a.publishLocked()
		a.mu.Unlock()
		return nil, ErrNoResolvedQuiz
	}
	resolved := *a.resolved
	a.notice = nil
	a.setLocked(StateCheckingAvailability)

	availability := Classify(resolved.Share, a.now())
	if notice, blocked := AvailabilityNotice(availability, resolved.Share, a.format); blocked {
		a.notice = &notice
		a.setLocked(StateBlocked)
		a.setLocked(StateResolved)
		a.mu.Unlock()
		if availability == domain.Expired {
			return nil, domain.ErrExpired
		}
		return nil, domain.ErrNotYetOpen
	}
	a.setLocked(StateAvailable)

	gen, idCtx := a.beginLocked(ctx)
	a.setLocked(StateResolvingIdentity)
	a.mu.Unlock()

	identity, err := a.resolver.Resolve(idCtx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.currentLocked(gen) {
		return nil, ErrSuperseded
	}
	a.finishLocked()
	if errors.Is(err, ErrPromptCancelled) {
		a.setLocked(StateAbandoned)
		a.setLocked(StateResolved)
		return nil, nil
	}
	if err != nil {
		a.noticeLocked(err)
		a.setLocked(StateResolved)
		return nil, err
	}

	handoff := domain.AttemptHandoff{QuizID: resolved.Quiz.ID, SharedQuizID: resolved.Share.ID}
	if identity.IsGuest() {
		handoff.GuestName = identity.DisplayName
	}
	// Held under the lock so the handoff cannot race a reset or a second start.
	if err := a.starter.StartAttempt(ctx, handoff); err != nil {
		log.Printf("start attempt for quiz %s: %v", handoff.QuizID, err)
		a.noticeLocked(err)
		a.setLocked(StateResolved)
		return nil, err
	}
	a.handoff = &handoff
	a.setLocked(StateAdmitted)
	return &handoff, nil
}

// Reset discards the resolved quiz and any in-flight request ("try a different code").
func (a *Admission) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.state == StateAdmitted {
		return ErrAdmissionClosed
	}
	a.invalidateLocked()
	a.code = ""
	a.resolved = nil
	a.lastCode = ""
	a.notice = nil
	a.setLocked(StateIdle)
	return nil
}

// Close abandons the flow; results of in-flight requests are dropped.
func (a *Admission) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.invalidateLocked()
}

// Snapshot returns the current visible state.
func (a *Admission) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Admission) acceptingLocked() error {
	if a.closed || a.state == StateAdmitted {
		return ErrAdmissionClosed
	}
	switch a.state {
	case StateCheckingAvailability, StateAvailable, StateResolvingIdentity:
		return ErrAdmissionBusy
	}
	return nil
}

// beginLocked starts a new request generation, cancelling the previous one.
func (a *Admission) beginLocked(ctx context.Context) (uint64, context.Context) {
	a.invalidateLocked()
	reqCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	return a.gen, reqCtx
}

func (a *Admission) invalidateLocked() {
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *Admission) currentLocked(gen uint64) bool {
	return !a.closed && gen == a.gen
}

func (a *Admission) finishLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// failLocked surfaces a validation failure and clears the input for a retry.
func (a *Admission) failLocked(err error) {
	a.noticeLocked(err)
	a.code = ""
	a.setLocked(StateInvalid)
	a.setLocked(StateIdle)
}

func (a *Admission) noticeLocked(err error) {
	n := NoticeFor(err)
	a.notice = &n
}

func (a *Admission) setLocked(s State) {
	a.state = s
	a.publishLocked()
}

func (a *Admission) publishLocked() {
	if a.onChange != nil {
		a.onChange(a.snapshotLocked())
	}
}

func (a *Admission) snapshotLocked() Snapshot {
	snap := Snapshot{State: a.state, Name: a.state.String(), Code: a.code}
	if a.resolved != nil {
		r := *a.resolved
		snap.Resolved = &r
	}
	if a.notice != nil {
		n := *a.notice
		snap.Notice = &n
	}
	if a.handoff != nil {
		h := *a.handoff
		snap.Handoff = &h
	}
	return snap
}
