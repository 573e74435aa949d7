package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpSMSSender posts short messages to an SMS gateway webhook. The
// gateway owns retries and delivery reports; this client only reports
// whether the hand-off succeeded.
type httpSMSSender struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSMSSender(endpoint, apiKey string) SMSSender {
	return &httpSMSSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *httpSMSSender) SendShortMessage(ctx context.Context, phoneNumber, text string) error {
	payload, err := json.Marshal(map[string]string{
		"to":   phoneNumber,
		"text": text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway error: status %d", resp.StatusCode)
	}
	return nil
}
