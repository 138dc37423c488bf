package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const smsTimeout = 15 * time.Second

// SMSNotifier posts the message to a JSON SMS gateway.
type SMSNotifier struct {
	endpoint   string
	apiKey     string
	sender     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewSMSNotifier(endpoint, apiKey, sender string, log *zap.Logger) *SMSNotifier {
	return &SMSNotifier{
		endpoint:   endpoint,
		apiKey:     apiKey,
		sender:     sender,
		httpClient: &http.Client{Timeout: smsTimeout},
		log:        log.With(zap.String("notifier", "sms")),
	}
}

type smsPayload struct {
	To     string `json:"to"`
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text"`
}

func (n *SMSNotifier) Send(ctx context.Context, msg Message) error {
	if n.endpoint == "" || n.apiKey == "" {
		return fmt.Errorf("sms: gateway not configured")
	}

	raw, err := json.Marshal(smsPayload{To: msg.To, Sender: n.sender, Text: msg.Body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Error("SMS request failed", zap.Error(err))
		return fmt.Errorf("sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.log.Error("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("sms: request failed status=%d", resp.StatusCode)
	}

	n.log.Info("SMS sent")
	return nil
}
