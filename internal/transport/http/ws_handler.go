package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"studyguru-quiz-service/internal/app"
	"studyguru-quiz-service/internal/auth"
	"studyguru-quiz-service/internal/domain"
)

// JoinConfig carries the backends and presentation settings of the join channel.
type JoinConfig struct {
	Shares   app.ShareFinder
	Creators app.CreatorDirectory
	Handoffs app.HandoffStore
	Verifier *auth.Verifier
	Prompt   app.PromptConfig
	Format   app.TimeFormat
	Timeout  time.Duration
	Now      func() time.Time
}

// WSHandler runs one admission flow per websocket connection.
type WSHandler struct {
	cfg       JoinConfig
	validator *app.CodeValidator
	upgrader  websocket.Upgrader
}

func NewWSHandler(cfg JoinConfig) *WSHandler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &WSHandler{
		cfg:       cfg,
		validator: app.NewCodeValidator(cfg.Shares, cfg.Creators, cfg.Timeout),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type codePayload struct {
	Value string `json:"value"`
}

type namePayload struct {
	Name string `json:"name"`
}

type handoffPayload struct {
	Ticket string `json:"ticket"`
	domain.AttemptHandoff
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// joinConn serializes writes to one websocket.
type joinConn struct {
	send chan outboundMessage[any]
	done chan struct{}
}

// emit queues a message; it gives up once the connection is going away.
func (c *joinConn) emit(typ string, payload any) bool {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
		return true
	case <-c.done:
		return false
	}
}

// ServeWS upgrades HTTP requests to websockets and drives an admission flow over them.
// Query parameters: code (optional deep link) and token (optional access token).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r.Header.Get("Authorization"))
	}
	deepLink := r.URL.Query().Get("code")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	out := &joinConn{send: make(chan outboundMessage[any], 16), done: make(chan struct{})}
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		broken := false
		for msg := range out.send {
			if broken {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				broken = true
				_ = conn.Close()
			}
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	prompter := &wsPrompter{out: out}
	flow := h.newFlow(token, prompter, out)

	var workers sync.WaitGroup
	run := func(op func() error) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := op(); err != nil {
				reportError(out, err)
			}
		}()
	}

	// Code input is applied in arrival order by a single worker.
	inputs := make(chan func() error, 16)
	workers.Add(1)
	go func() {
		defer workers.Done()
		for op := range inputs {
			if err := op(); err != nil {
				reportError(out, err)
			}
		}
	}()

	out.emit("state", flow.Snapshot())
	if deepLink != "" {
		inputs <- func() error { return flow.SubmitCode(ctx, deepLink) }
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "input", "submit":
			var payload codePayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					out.emit("error", errorPayload{Message: "invalid code payload"})
					continue
				}
			}
			if inbound.Type == "input" {
				inputs <- func() error { return flow.Input(ctx, payload.Value) }
			} else if payload.Value != "" {
				inputs <- func() error { return flow.SubmitCode(ctx, payload.Value) }
			} else {
				inputs <- func() error { return flow.Submit(ctx) }
			}
		case "start":
			run(func() error {
				_, err := flow.Start(ctx)
				return err
			})
		case "reset":
			if err := flow.Reset(); err != nil {
				reportError(out, err)
			}
		case "name":
			var payload namePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				out.emit("error", errorPayload{Message: "invalid name payload"})
				continue
			}
			if !prompter.answer(promptAnswer{name: payload.Name}) {
				out.emit("error", errorPayload{Message: "no prompt pending"})
			}
		case "cancel":
			if !prompter.answer(promptAnswer{cancelled: true}) {
				out.emit("error", errorPayload{Message: "no prompt pending"})
			}
		default:
			out.emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	flow.Close()
	cancel()
	close(out.done)
	close(inputs)
	workers.Wait()
	close(out.send)
	<-writerDone
}

func (h *WSHandler) newFlow(token string, prompter *wsPrompter, out *joinConn) *app.Admission {
	var sessions app.SessionProvider
	if h.cfg.Verifier != nil && token != "" {
		sessions = auth.NewTokenSession(h.cfg.Verifier, token)
	}
	resolver := app.NewIdentityResolver(sessions, prompter, h.cfg.Prompt, h.cfg.Timeout)

	starter := app.AttemptStarterFunc(func(ctx context.Context, handoff domain.AttemptHandoff) error {
		ticket, err := h.cfg.Handoffs.Put(ctx, handoff)
		if err != nil {
			return err
		}
		out.emit("handoff", handoffPayload{Ticket: ticket, AttemptHandoff: handoff})
		return nil
	})

	return app.NewAdmission(h.validator, resolver, starter,
		app.WithClock(h.cfg.Now),
		app.WithTimeFormat(h.cfg.Format),
		app.WithListener(func(s app.Snapshot) { out.emit("state", s) }),
	)
}

// reportError forwards flow errors that the state snapshots do not already describe.
func reportError(out *joinConn, err error) {
	switch {
	case errors.Is(err, app.ErrSuperseded), errors.Is(err, context.Canceled):
	case errors.Is(err, app.ErrAdmissionBusy):
		out.emit("error", errorPayload{Message: "a join is already in progress"})
	case errors.Is(err, app.ErrAdmissionClosed):
		out.emit("error", errorPayload{Message: "this join has finished"})
	}
}

type promptAnswer struct {
	name      string
	cancelled bool
}

// wsPrompter asks the client for a guest name and waits for a name or cancel message.
type wsPrompter struct {
	out *joinConn

	mu      sync.Mutex
	pending chan promptAnswer
}

func (p *wsPrompter) Prompt(ctx context.Context, cfg app.PromptConfig) (string, error) {
	reply := make(chan promptAnswer, 1)
	p.mu.Lock()
	p.pending = reply
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		if p.pending == reply {
			p.pending = nil
		}
		p.mu.Unlock()
	}()

	if !p.out.emit("prompt", cfg) {
		return "", app.ErrPromptCancelled
	}
	select {
	case ans := <-reply:
		if ans.cancelled {
			return "", app.ErrPromptCancelled
		}
		return ans.name, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *wsPrompter) Notify(_ context.Context, notice domain.Notice) {
	p.out.emit("notice", notice)
}

// answer delivers a reply to the open prompt, reporting false when none is open.
func (p *wsPrompter) answer(a promptAnswer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return false
	}
	p.pending <- a
	p.pending = nil
	return true
}
