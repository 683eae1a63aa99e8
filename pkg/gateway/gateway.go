package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"biz-assistant-be/internal/apperror"

	"github.com/google/uuid"
)

// Sender delivers an outbound message to the user through the messaging
// gateway. Formatting/templating happens upstream of this interface.
type Sender interface {
	Send(ctx context.Context, userID uuid.UUID, text string) error
}

// HTTPSender posts replies to the gateway's outbound endpoint.
type HTTPSender struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPSender(url, token string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type outboundPayload struct {
	UserId string `json:"user_id"`
	Text   string `json:"text"`
}

func (s *HTTPSender) Send(ctx context.Context, userID uuid.UUID, text string) error {
	payload, err := json.Marshal(outboundPayload{
		UserId: userID.String(),
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal outbound payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperror.Upstream(err, "gateway send")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperror.Upstream(fmt.Errorf("status %d", resp.StatusCode), "gateway send")
	}
	return nil
}

// NoopSender is used in development when no gateway is configured. The
// reply still goes back in the webhook response body.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, userID uuid.UUID, text string) error {
	return nil
}
