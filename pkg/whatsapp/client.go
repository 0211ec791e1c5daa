package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the WhatsApp Cloud API for one registered phone number.
type Client struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	appSecret     string
	httpClient    *http.Client
}

func NewClient(baseURL, accessToken, phoneNumberID, appSecret string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		appSecret:     appSecret,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText sends a plain text message to a wa_id. Failures are returned for
// the caller to log; delivery is best-effort.
func (c *Client) SendText(ctx context.Context, waID, text string) error {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                waID,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send WhatsApp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("WhatsApp API returned %s: %s", resp.Status, string(respBody))
	}
	return nil
}

// VerifySignature checks an X-Hub-Signature-256 header against the raw
// request body. The "sha256=" prefix is stripped and the comparison is
// constant-time; any malformed header is simply a mismatch.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	signature = strings.TrimPrefix(signature, "sha256=")
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
