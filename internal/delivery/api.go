package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIProvider delivers mail through a transactional email HTTP API.
type APIProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIProvider creates a provider for the given API endpoint.
func NewAPIProvider(baseURL, apiKey string) *APIProvider {
	return &APIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiSendRequest struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// Send submits one email. Providers disagree on response shape, so the id is
// extracted defensively: a top-level id, a nested data.id, a messageId, or a
// bare JSON string. A 2xx response with no recognizable id still counts as
// sent.
func (p *APIProvider) Send(ctx context.Context, msg *Message) (string, error) {
	payload, err := json.Marshal(apiSendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Tags:    msg.Tags,
	})
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode >= 400 {
		return "", &Error{Message: extractErrorMessage(resp, body)}
	}

	return extractDeliveryID(body), nil
}

// extractDeliveryID pulls the message id out of whatever shape the provider
// returned.
func extractDeliveryID(body []byte) string {
	var envelope struct {
		ID        string `json:"id"`
		MessageID string `json:"messageId"`
		Data      struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.ID != "":
			return envelope.ID
		case envelope.Data.ID != "":
			return envelope.Data.ID
		case envelope.MessageID != "":
			return envelope.MessageID
		}
	}

	// Some providers answer with a bare id string.
	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && bare != "" {
		return bare
	}

	return "sent_successfully"
}

// extractErrorMessage pulls a human-readable failure reason out of an error
// response, falling back to "<status>: <statusText>".
func extractErrorMessage(resp *http.Response, body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Data.Message != "":
			return envelope.Data.Message
		case envelope.Message != "":
			return envelope.Message
		case envelope.Error != "":
			return envelope.Error
		}
	}
	return fmt.Sprintf("%d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
