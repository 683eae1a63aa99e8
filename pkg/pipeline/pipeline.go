package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/internal/repository/memory"
	"biz-assistant-be/internal/repository/unitofwork"
	"biz-assistant-be/pkg/clarify"
	"biz-assistant-be/pkg/classifier"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/gateway"
	"biz-assistant-be/pkg/idempotency"
	"biz-assistant-be/pkg/intent"

	"github.com/google/uuid"
)

// InboundMessage is one webhook delivery from the messaging gateway.
type InboundMessage struct {
	UserId    uuid.UUID
	MessageId string
	Text      string
}

// Reply is the pipeline's outcome for one message. It is what gets cached by
// the idempotency guard and echoed in the webhook response.
type Reply struct {
	SessionId     uuid.UUID `json:"session_id"`
	Text          string    `json:"text"`
	Intent        string    `json:"intent,omitempty"`
	State         string    `json:"state,omitempty"`
	Clarification bool      `json:"clarification,omitempty"`
	Duplicate     bool      `json:"duplicate,omitempty"`
}

// SessionResolver is the slice of the session service the pipeline needs.
type SessionResolver interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error)
}

// Config carries the pipeline thresholds and tier map.
type Config struct {
	FastPathThreshold float64
	Tiers             map[string]int
	TurnWindow        int
	RouterConfig      intent.Config
}

// Orchestrator runs the full message pipeline: dedup, session resolution,
// classification, routing, dispatch, and delivery.
type Orchestrator struct {
	sessions   SessionResolver
	guard      *idempotency.Guard
	clarifier  *clarify.Manager
	classifier classifier.Classifier
	router     *intent.Router
	engine     *fsm.Engine
	registry   *Registry
	sender     gateway.Sender
	uowFactory unitofwork.RepositoryFactory
	turnCache  *memory.TurnCache
	log        logger.ILogger
	cfg        Config
}

func NewOrchestrator(
	sessions SessionResolver,
	guard *idempotency.Guard,
	clarifier *clarify.Manager,
	cls classifier.Classifier,
	engine *fsm.Engine,
	registry *Registry,
	sender gateway.Sender,
	uowFactory unitofwork.RepositoryFactory,
	turnCache *memory.TurnCache,
	log logger.ILogger,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		guard:      guard,
		clarifier:  clarifier,
		classifier: cls,
		router:     intent.NewRouter(cfg.RouterConfig),
		engine:     engine,
		registry:   registry,
		sender:     sender,
		uowFactory: uowFactory,
		turnCache:  turnCache,
		log:        log,
		cfg:        cfg,
	}
}

// Process handles one inbound message end to end. Duplicate deliveries
// short-circuit to the cached reply; classifier failures propagate so the
// gateway retries, nothing having been recorded.
func (o *Orchestrator) Process(ctx context.Context, msg InboundMessage) (*Reply, error) {
	if cached, err := o.guard.Check(ctx, msg.UserId, msg.MessageId); err != nil {
		return nil, err
	} else if cached != nil {
		var reply Reply
		if uerr := json.Unmarshal(cached, &reply); uerr != nil {
			return nil, apperror.Upstream(uerr, "decode cached reply")
		}
		reply.Duplicate = true
		return &reply, nil
	}

	session, _, err := o.sessions.GetOrCreate(ctx, msg.UserId)
	if err != nil {
		return nil, err
	}

	history, err := o.loadHistory(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	// A pending clarification whose options match the message resolves
	// without a model call.
	decided, err := o.resolvePendingClarification(ctx, session, msg)
	if err != nil {
		return nil, err
	}

	var reply *Reply
	if decided != nil {
		reply, err = o.dispatch(ctx, session, *decided, msg, history)
	} else {
		reply, err = o.classifyAndRoute(ctx, session, msg, history)
	}
	if err != nil {
		return nil, err
	}

	if err := o.recordTurns(ctx, session.Id, msg.Text, reply.Text); err != nil {
		o.log.Warn("pipeline", "failed to record conversation turns", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, apperror.Upstream(err, "encode reply")
	}
	if err := o.guard.Record(ctx, msg.UserId, msg.MessageId, payload); err != nil {
		return nil, err
	}

	if err := o.sender.Send(ctx, msg.UserId, reply.Text); err != nil {
		// The reply still reaches the gateway in the webhook response body.
		o.log.Warn("pipeline", "outbound send failed", map[string]interface{}{
			"user_id": msg.UserId.String(),
			"error":   err.Error(),
		})
	}

	return reply, nil
}

func (o *Orchestrator) classifyAndRoute(ctx context.Context, session *entity.Session, msg InboundMessage, history []*entity.ConversationTurn) (*Reply, error) {
	fsmCtx := classifier.FSMContext{
		State:                session.FsmState,
		ExpectingResponse:    session.Metadata.ExpectingResponse,
		LastAction:           session.Metadata.LastAction,
		AvailableNextActions: session.Metadata.AvailableNextActions,
	}

	candidates, err := o.classifier.Classify(ctx, msg.Text, toMessages(history), fsmCtx)
	if err != nil {
		return nil, err
	}
	candidates = intent.AssignTiers(candidates, o.cfg.Tiers)

	decision := o.router.Route(candidates, intent.Context{
		State:               session.FsmState,
		ExpectingResponse:   session.Metadata.ExpectingResponse,
		Age:                 time.Since(session.LastActivityAt),
		ContinuationIntents: session.Metadata.AvailableNextActions,
	})

	if decision.NeedsClarification {
		return o.askClarification(ctx, session, msg, candidates, decision.Reason)
	}
	return o.dispatch(ctx, session, *decision.Intent, msg, history)
}

func (o *Orchestrator) askClarification(ctx context.Context, session *entity.Session, msg InboundMessage, candidates []intent.CandidateIntent, reason string) (*Reply, error) {
	prompt, options := clarificationPrompt(candidates)

	if _, err := o.clarifier.Create(ctx, msg.UserId, session.Id, prompt, options); err != nil {
		return nil, err
	}

	// Mid-flow states self-loop on clarify_needed; elsewhere the state is
	// left alone and only the pending request marks the ambiguity.
	if _, err := o.engine.Transition(ctx, session.Id, fsm.TriggerClarifyNeeded,
		fsm.MetadataPatch{ExpectingResponse: boolPtr(true)},
	); err != nil && !apperror.IsValidation(err) && !apperror.IsConflict(err) {
		return nil, err
	}

	o.log.Info("pipeline", "asked for clarification", map[string]interface{}{
		"session_id": session.Id.String(),
		"reason":     reason,
	})

	return &Reply{
		SessionId:     session.Id,
		Text:          prompt,
		State:         session.FsmState,
		Clarification: true,
	}, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, session *entity.Session, winner intent.CandidateIntent, msg InboundMessage, history []*entity.ConversationTurn) (*Reply, error) {
	handler := o.registry.Handler(winner.Name)
	if handler == nil {
		return o.fullPath(ctx, session, winner, msg, history)
	}

	outcome, err := handler.Handle(ctx, &HandlerContext{
		Session: session,
		Intent:  winner,
		Message: msg,
		History: history,
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			// The handler could not resolve its input from the message alone.
			// Fall through to the reasoning path with the same session and
			// history instead of failing the delivery.
			return o.fullPath(ctx, session, winner, msg, history)
		}
		return nil, err
	}

	state := session.FsmState
	if outcome.Trigger != "" {
		opts := []fsm.TransitionOption{fsm.WithCorrelationID(correlationID(msg.MessageId))}
		if outcome.ClosureReason != "" {
			opts = append(opts, fsm.WithClosureReason(outcome.ClosureReason))
		}
		result, terr := o.engine.Transition(ctx, session.Id, outcome.Trigger, outcome.Patch, opts...)
		switch {
		case terr == nil:
			state = string(result.To)
		case apperror.IsValidation(terr) || apperror.IsConflict(terr):
			// The session moved on or the action no longer applies. Tell the
			// user instead of failing the delivery.
			return &Reply{
				SessionId: session.Id,
				Text:      "That doesn't apply right now. Tell me what you'd like to do and we'll take it from there.",
				Intent:    winner.Name,
				State:     session.FsmState,
			}, nil
		default:
			return nil, terr
		}
	}

	// The transition above applies either way; the fast-path bar only
	// decides whether the wording is canned or generated.
	text := outcome.Text
	if winner.Confidence < o.cfg.FastPathThreshold {
		generated, gerr := o.classifier.Generate(ctx, msg.Text, toMessages(history), classifier.FSMContext{
			State:                state,
			ExpectingResponse:    session.Metadata.ExpectingResponse,
			LastAction:           session.Metadata.LastAction,
			AvailableNextActions: session.Metadata.AvailableNextActions,
		})
		if gerr != nil {
			// The state change is already committed; a wording failure must
			// not fail the delivery.
			o.log.Warn("pipeline", "generated reply failed, using handler text", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      gerr.Error(),
			})
		} else {
			text = generated
		}
	}

	return &Reply{
		SessionId: session.Id,
		Text:      text,
		Intent:    winner.Name,
		State:     state,
	}, nil
}

// fullPath replies conversationally for intents with no state semantics (no
// registered handler) and for handlers that could not resolve their input.
func (o *Orchestrator) fullPath(ctx context.Context, session *entity.Session, winner intent.CandidateIntent, msg InboundMessage, history []*entity.ConversationTurn) (*Reply, error) {
	fsmCtx := classifier.FSMContext{
		State:                session.FsmState,
		ExpectingResponse:    session.Metadata.ExpectingResponse,
		LastAction:           session.Metadata.LastAction,
		AvailableNextActions: session.Metadata.AvailableNextActions,
	}

	text, err := o.classifier.Generate(ctx, msg.Text, toMessages(history), fsmCtx)
	if err != nil {
		return nil, err
	}

	return &Reply{
		SessionId: session.Id,
		Text:      text,
		Intent:    winner.Name,
		State:     session.FsmState,
	}, nil
}

// resolvePendingClarification maps the message onto the pending request's
// options. A non-matching message is a topic switch and goes back through
// classification, where a new request may supersede the old one.
func (o *Orchestrator) resolvePendingClarification(ctx context.Context, session *entity.Session, msg InboundMessage) (*intent.CandidateIntent, error) {
	pending, err := o.clarifier.GetPending(ctx, msg.UserId)
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.SessionId != session.Id {
		return nil, nil
	}

	choice, ok := matchOption(pending.Options, msg.Text)
	if !ok {
		return nil, nil
	}

	if _, err := o.clarifier.Answer(ctx, pending.Id, choice); err != nil {
		if apperror.IsConflict(err) || apperror.IsExpired(err) {
			return nil, nil
		}
		return nil, err
	}

	winner := intent.CandidateIntent{Name: choice, Confidence: 1.0}
	assigned := intent.AssignTiers([]intent.CandidateIntent{winner}, o.cfg.Tiers)
	return &assigned[0], nil
}

// matchOption accepts the option label (case-insensitive) or its 1-based
// position in the list.
func matchOption(options []string, text string) (string, bool) {
	answer := strings.TrimSpace(strings.ToLower(text))
	if answer == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.ToLower(opt) == answer {
			return opt, true
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	return "", false
}

func clarificationPrompt(candidates []intent.CandidateIntent) (string, []string) {
	if len(candidates) == 0 {
		return "Sorry, I didn't catch that. Could you rephrase?", nil
	}

	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}
	options := make([]string, len(top))
	labels := make([]string, len(top))
	for i, c := range top {
		options[i] = c.Name
		labels[i] = strings.ReplaceAll(c.Name, "_", " ")
	}

	var b strings.Builder
	b.WriteString("Just to be sure, did you mean: ")
	for i, label := range labels {
		if i > 0 {
			b.WriteString(" or ")
		}
		b.WriteString(label)
	}
	b.WriteString("? Reply with the option or its number.")
	return b.String(), options
}

func (o *Orchestrator) loadHistory(ctx context.Context, sessionID uuid.UUID) ([]*entity.ConversationTurn, error) {
	if turns, found := o.turnCache.Get(sessionID.String()); found {
		return turns, nil
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ConversationTurnRepository().FindRecentBySession(ctx, sessionID, o.cfg.TurnWindow)
	if err != nil {
		return nil, err
	}
	o.turnCache.Put(sessionID.String(), turns)
	return turns, nil
}

func (o *Orchestrator) recordTurns(ctx context.Context, sessionID uuid.UUID, userText, modelText string) error {
	uow := o.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	userTurn := &entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      constant.ChatRoleUser,
		Text:      userText,
		CreatedAt: now,
	}
	modelTurn := &entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      constant.ChatRoleModel,
		Text:      modelText,
		CreatedAt: now.Add(time.Millisecond),
	}

	if err := uow.ConversationTurnRepository().Create(ctx, userTurn); err != nil {
		return err
	}
	if err := uow.ConversationTurnRepository().Create(ctx, modelTurn); err != nil {
		return err
	}

	o.turnCache.Append(sessionID.String(), userTurn)
	o.turnCache.Append(sessionID.String(), modelTurn)
	return nil
}

func toMessages(turns []*entity.ConversationTurn) []classifier.Message {
	messages := make([]classifier.Message, len(turns))
	for i, turn := range turns {
		messages[i] = classifier.Message{Role: turn.Role, Content: turn.Text}
	}
	return messages
}

// correlationID derives a stable id from the gateway message id so retried
// deliveries correlate to the same transition log entries.
func correlationID(messageID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(messageID))
}
