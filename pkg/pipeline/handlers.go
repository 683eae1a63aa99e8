package pipeline

import (
	"context"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/intent"
)

// HandlerContext is everything a fast-path handler sees for one message.
type HandlerContext struct {
	Session *entity.Session
	Intent  intent.CandidateIntent
	Message InboundMessage
	History []*entity.ConversationTurn
}

// Outcome is what a handler produced: the reply text plus the FSM trigger to
// apply, if any. A zero Trigger means the session state is untouched.
type Outcome struct {
	Text    string
	Trigger fsm.Trigger
	Patch   fsm.MetadataPatch
	// ClosureReason is recorded when the trigger lands the session in a
	// terminal state.
	ClosureReason string
}

// Handler processes one recognized intent without a reasoning-model call.
type Handler interface {
	Handle(ctx context.Context, hc *HandlerContext) (*Outcome, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, hc *HandlerContext) (*Outcome, error)

func (f HandlerFunc) Handle(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	return f(ctx, hc)
}

// Registry maps intent names to fast-path handlers. Intents without a
// registered handler take the full reasoning path.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) Handler(name string) Handler {
	return r.handlers[name]
}
