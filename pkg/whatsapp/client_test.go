package whatsapp_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pennywise/pkg/whatsapp"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := whatsapp.NewClient("https://example.invalid", "token", "12345", "appsecret")
	body := []byte(`{"entry":[]}`)
	valid := sign("appsecret", body)

	cases := []struct {
		name      string
		signature string
		want      bool
	}{
		{"with sha256 prefix", "sha256=" + valid, true},
		{"without prefix", valid, true},
		{"tampered body digest", "sha256=" + sign("appsecret", []byte("other")), false},
		{"wrong secret", "sha256=" + sign("wrong", body), false},
		{"not hex", "sha256=zzzz", false},
		{"empty header", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.VerifySignature(body, tc.signature); got != tc.want {
				t.Fatalf("VerifySignature = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{"messages": []any{map[string]string{"id": "wamid.1"}}})
	}))
	defer srv.Close()

	c := whatsapp.NewClient(srv.URL, "token", "12345", "appsecret")
	if err := c.SendText(context.Background(), "919876543210", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/12345/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotPayload["messaging_product"] != "whatsapp" || gotPayload["to"] != "919876543210" {
		t.Fatalf("payload = %v", gotPayload)
	}
	text, _ := gotPayload["text"].(map[string]any)
	if text["body"] != "hello" {
		t.Fatalf("text payload = %v", gotPayload["text"])
	}
}

func TestSendText_APIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := whatsapp.NewClient(srv.URL, "token", "12345", "appsecret")
	if err := c.SendText(context.Background(), "919876543210", "hello"); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}
