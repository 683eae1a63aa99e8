package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"biz-assistant-be/internal/apperror"
	"biz-assistant-be/internal/pkg/logger"
	"biz-assistant-be/pkg/intent"
)

// FSMContext is the session-side context handed to the model so it can
// classify relative to the active flow.
type FSMContext struct {
	State                string
	ExpectingResponse    bool
	LastAction           string
	AvailableNextActions []string
}

// Classifier is the reasoning/classification collaborator. Classify returns
// candidate intents for routing; Generate is the full reasoning path used
// when no fast-path handler applies.
type Classifier interface {
	Classify(ctx context.Context, message string, history []Message, fsmCtx FSMContext) ([]intent.CandidateIntent, error)
	Generate(ctx context.Context, message string, history []Message, fsmCtx FSMContext) (string, error)
}

// LLMClassifier implements Classifier on top of a chat Provider with a
// bounded per-call timeout.
type LLMClassifier struct {
	provider Provider
	log      logger.ILogger
	timeout  time.Duration
}

func NewLLMClassifier(provider Provider, log logger.ILogger, timeout time.Duration) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		log:      log,
		timeout:  timeout,
	}
}

type rawCandidate struct {
	Name       string                 `json:"name"`
	Confidence float64                `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
}

func (c *LLMClassifier) Classify(ctx context.Context, message string, history []Message, fsmCtx FSMContext) ([]intent.CandidateIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := c.buildClassifyPrompt(message, history, fsmCtx)

	// Temperature 0 for deterministic classification output.
	response, err := c.provider.Generate(ctx, prompt, WithTemperature(0.0))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("classifier call exceeded %s", c.timeout)
		}
		return nil, apperror.Upstream(err, "classifier call")
	}

	candidates, err := parseCandidates(response)
	if err != nil {
		c.log.Warn("classifier", "failed to parse candidates", map[string]interface{}{
			"error":    err.Error(),
			"response": response,
		})
		return nil, apperror.Upstream(err, "parse classifier response")
	}
	return candidates, nil
}

func (c *LLMClassifier) Generate(ctx context.Context, message string, history []Message, fsmCtx FSMContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	full := make([]Message, 0, len(history)+2)
	full = append(full, Message{Role: "system", Content: c.buildSystemPrompt(fsmCtx)})
	full = append(full, history...)
	full = append(full, Message{Role: "user", Content: message})

	reply, err := c.provider.Chat(ctx, full)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperror.UpstreamTimeout("reasoning call exceeded %s", c.timeout)
		}
		return "", apperror.Upstream(err, "reasoning call")
	}
	return reply, nil
}

func (c *LLMClassifier) buildSystemPrompt(fsmCtx FSMContext) string {
	var b strings.Builder
	b.WriteString("You are a business assistant helping the user manage tasks and projects over chat.\n")
	if fsmCtx.State != "" && fsmCtx.State != "idle" {
		fmt.Fprintf(&b, "The user is mid-flow (state: %s, last action: %s).\n", fsmCtx.State, fsmCtx.LastAction)
	}
	return b.String()
}

func (c *LLMClassifier) buildClassifyPrompt(message string, history []Message, fsmCtx FSMContext) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You are an intent analyzer. Your ONLY job is to identify what the user wants to DO.\n")
	b.WriteString("You do NOT answer. You output a JSON array of candidate intents.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<session_state>\n")
	fmt.Fprintf(&b, "STATE: %s\n", fsmCtx.State)
	fmt.Fprintf(&b, "EXPECTING_RESPONSE: %t\n", fsmCtx.ExpectingResponse)
	if fsmCtx.LastAction != "" {
		fmt.Fprintf(&b, "LAST_ACTION: %s\n", fsmCtx.LastAction)
	}
	if len(fsmCtx.AvailableNextActions) > 0 {
		fmt.Fprintf(&b, "AVAILABLE_NEXT_ACTIONS: %s\n", strings.Join(fsmCtx.AvailableNextActions, ", "))
	}
	b.WriteString("</session_state>\n\n")

	if len(history) > 0 {
		b.WriteString("<recent_turns>\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("</recent_turns>\n\n")
	}

	fmt.Fprintf(&b, "<message>%s</message>\n\n", message)
	b.WriteString(`Output ONLY a JSON array: [{"name": "...", "confidence": 0.0-1.0, "parameters": {}}]`)
	b.WriteString("\n")

	return b.String()
}

// parseCandidates tolerates markdown fences around the JSON body.
func parseCandidates(response string) ([]intent.CandidateIntent, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var raw []rawCandidate
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal candidates: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty candidate list")
	}

	candidates := make([]intent.CandidateIntent, len(raw))
	for i, r := range raw {
		candidates[i] = intent.CandidateIntent{
			Name:       r.Name,
			Confidence: r.Confidence,
			Parameters: r.Parameters,
		}
	}
	return candidates, nil
}
