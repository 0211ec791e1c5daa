package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteClient calls an external language-model-backed extraction service.
// The service receives {"text": ..., "reference_date": ...} and must answer
// with all six expense fields; anything less is treated as a failure so the
// local extractor can take over.
type RemoteClient struct {
	url    string
	apiKey string
	client *http.Client
}

func NewRemoteClient(url, apiKey string) *RemoteClient {
	return &RemoteClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

var requiredKeys = []string{"amount", "currency", "expense_date", "category", "merchant", "notes"}

type remoteRequest struct {
	Text          string `json:"text"`
	ReferenceDate string `json:"reference_date,omitempty"`
}

// Parse returns the raw response object. Keys may carry null values; a
// missing key, a non-2xx status or malformed JSON is an error.
func (c *RemoteClient) Parse(ctx context.Context, text string, referenceDate time.Time) (map[string]any, error) {
	reqBody := remoteRequest{Text: text}
	if !referenceDate.IsZero() {
		reqBody.ReferenceDate = referenceDate.Format("2006-01-02")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal parser request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create parser request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call external text parser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("external text parser returned %s: %s", resp.Status, string(body))
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode parser response: %w", err)
	}

	for _, key := range requiredKeys {
		if _, ok := data[key]; !ok {
			return nil, fmt.Errorf("external text parser response missing %q", key)
		}
	}
	return data, nil
}
